package nodes

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portflow/portflow/internal/core/flow"
	"github.com/portflow/portflow/internal/core/runner"
)

func runFlow(t *testing.T, ctx context.Context, f *flow.Flow) *runner.Report {
	t.Helper()
	report, err := runner.NewRunner(f).Start(ctx)
	require.NoError(t, err)
	require.True(t, report.OK(), "run failed: %v", report.Err())
	return report
}

func TestValueToFileOutput(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "answer.txt")

	f := flow.New()
	value := NewValueInputNode()
	value.Input.SetValue("42")
	out := NewFileOutputNode()
	out.Filepath.SetValue(target)

	require.NoError(t, f.AddNode(value.Def()))
	require.NoError(t, f.AddNode(out.Def()))
	require.NoError(t, f.AddConnector(value.Stream, out.Input))

	runFlow(t, context.Background(), f)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "42", string(content))
}

func TestFileInputToFileOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("copy me"), 0o644))

	f := flow.New()
	in := NewFileInputNode()
	in.Filepath.SetValue(src)
	out := NewFileOutputNode()
	out.Filepath.SetValue(dst)

	require.NoError(t, f.AddNode(in.Def()))
	require.NoError(t, f.AddNode(out.Def()))
	require.NoError(t, f.AddConnector(in.Output, out.Input))

	runFlow(t, context.Background(), f)

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "copy me", string(content))
}

func TestProcessNode(t *testing.T) {
	t.Run("stdout captured", func(t *testing.T) {
		f := flow.New()
		proc := NewProcessNode()
		proc.Command.SetValue("echo hello")
		show := NewStdoutNode()
		var buf bytes.Buffer
		show.SetWriter(&buf)

		require.NoError(t, f.AddNode(proc.Def()))
		require.NoError(t, f.AddNode(show.Def()))
		require.NoError(t, f.AddConnector(proc.Stdout, show.Input))

		runFlow(t, context.Background(), f)
		assert.Equal(t, "hello\n", buf.String())
	})

	t.Run("stdin piped through", func(t *testing.T) {
		f := flow.New()
		text := NewValueInputNode()
		text.Input.SetValue("one two three")
		count := NewProcessNode()
		count.Command.SetValue("wc -w")
		show := NewStdoutNode()
		var buf bytes.Buffer
		show.SetWriter(&buf)

		require.NoError(t, f.AddNode(text.Def()))
		require.NoError(t, f.AddNode(count.Def()))
		require.NoError(t, f.AddNode(show.Def()))
		require.NoError(t, f.AddConnector(text.Stream, count.Stdin))
		require.NoError(t, f.AddConnector(count.Stdout, show.Input))

		runFlow(t, context.Background(), f)
		assert.Equal(t, "3", strings.TrimSpace(buf.String()))
	})

	t.Run("nonzero exit is a result", func(t *testing.T) {
		f := flow.New()
		proc := NewProcessNode()
		proc.Command.SetValue("exit 3")
		require.NoError(t, f.AddNode(proc.Def()))

		runFlow(t, context.Background(), f)
		assert.Equal(t, 3, proc.Result.Value())
	})

	t.Run("empty command fails", func(t *testing.T) {
		f := flow.New()
		proc := NewProcessNode()
		require.NoError(t, f.AddNode(proc.Def()))

		report, err := runner.NewRunner(f).Start(context.Background())
		require.NoError(t, err)
		assert.False(t, report.OK())
		assert.ErrorIs(t, report.Err(), ErrMissingCommand)
	})
}

func TestStdinNode(t *testing.T) {
	f := flow.New()
	in := NewStdinNode()
	in.SetReader(strings.NewReader("piped input"))
	show := NewStdoutNode()
	var buf bytes.Buffer
	show.SetWriter(&buf)

	require.NoError(t, f.AddNode(in.Def()))
	require.NoError(t, f.AddNode(show.Def()))
	require.NoError(t, f.AddConnector(in.Output, show.Input))

	runFlow(t, context.Background(), f)
	assert.Equal(t, "piped input", buf.String())
}

func TestCLIParamNode(t *testing.T) {
	t.Run("value from context", func(t *testing.T) {
		p := NewCLIParamNode()
		p.Name.SetValue("input")
		p.Default.SetValue("fallback")
		ctx := WithParams(context.Background(), map[string]string{"input": "given"})
		require.NoError(t, p.Def().InvokeRun(ctx))
		assert.Equal(t, "given", p.Out.Value())
	})

	t.Run("default when absent", func(t *testing.T) {
		p := NewCLIParamNode()
		p.Name.SetValue("input")
		p.Default.SetValue("fallback")
		require.NoError(t, p.Def().InvokeRun(context.Background()))
		assert.Equal(t, "fallback", p.Out.Value())
	})

	t.Run("missing name", func(t *testing.T) {
		p := NewCLIParamNode()
		assert.ErrorIs(t, p.Def().InvokeRun(context.Background()), ErrMissingParamName)
	})
}

func TestFileListNode(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))

	fl := NewFileListNode()
	fl.Dirpath.SetValue(dir)
	require.NoError(t, fl.Def().InvokeRun(context.Background()))

	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	}, fl.Files.List())
}

func TestTwoStartNodesSharedDownstream(t *testing.T) {
	f := flow.New()
	left := NewValueInputNode()
	left.Def().SetID("left")
	left.Input.SetValue("L")
	right := NewValueInputNode()
	right.Def().SetID("right")
	right.Input.SetValue("R")

	join := flow.NewNode("test")
	join.SetID("join")
	inA := join.AddValuePort("inA", flow.RoleInput)
	inB := join.AddValuePort("inB", flow.RoleInput)
	var got string
	join.OnRun(func(context.Context) error {
		got = inA.Value().(string) + inB.Value().(string)
		return nil
	})

	require.NoError(t, f.AddNode(left.Def()))
	require.NoError(t, f.AddNode(right.Def()))
	require.NoError(t, f.AddNode(join))
	require.NoError(t, f.AddConnector(left.Out, inA))
	require.NoError(t, f.AddConnector(right.Out, inB))

	require.Len(t, f.StartNodes(), 2)
	runFlow(t, context.Background(), f)
	assert.Equal(t, "LR", got)
}
