package nodes

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/portflow/portflow/internal/core/flow"
	"github.com/portflow/portflow/internal/infrastructure/telemetry"
)

// Type tags for the file node family.
const (
	TypeFileInput  = "fileinput"
	TypeFileOutput = "fileoutput"
	TypeFileList   = "filelist"
)

// FileInputNode reads a file and publishes its content as a stream.
type FileInputNode struct {
	node     *flow.Node
	Filepath *flow.Port
	Output   *flow.Port
}

func NewFileInputNode() *FileInputNode {
	n := flow.NewNode(TypeFileInput)
	fi := &FileInputNode{node: n}
	fi.Filepath = n.AddValuePort("filepath", flow.RoleParameter).WithLiteral("")
	fi.Output = n.AddStreamPort("output", flow.RoleOutput)
	n.OnRun(fi.run)
	return fi
}

func (fi *FileInputNode) Def() *flow.Node { return fi.node }

func (fi *FileInputNode) run(ctx context.Context) error {
	path := asString(fi.Filepath.Value())
	if path == "" {
		return fmt.Errorf("%w: cannot read file", ErrMissingFilepath)
	}
	telemetry.FromContext(ctx).Info("read file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(fi.Output.Stream(), f)
	return err
}

// FileOutputNode writes its input stream to a file.
type FileOutputNode struct {
	node     *flow.Node
	Filepath *flow.Port
	Input    *flow.Port
}

func NewFileOutputNode() *FileOutputNode {
	n := flow.NewNode(TypeFileOutput)
	fo := &FileOutputNode{node: n}
	fo.Filepath = n.AddValuePort("filepath", flow.RoleParameter).WithLiteral("")
	fo.Input = n.AddStreamPort("input", flow.RoleInput)
	n.OnRun(fo.run)
	return fo
}

func (fo *FileOutputNode) Def() *flow.Node { return fo.node }

func (fo *FileOutputNode) run(ctx context.Context) error {
	path := asString(fo.Filepath.Value())
	if path == "" {
		return fmt.Errorf("%w: cannot write file", ErrMissingFilepath)
	}
	telemetry.FromContext(ctx).Info("write file", "path", path)
	r, err := fo.Input.Stream().Open()
	if err != nil {
		return err
	}
	defer r.Close()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

// FileListNode lists the entries of a directory as a list payload.
type FileListNode struct {
	node    *flow.Node
	Dirpath *flow.Port
	Files   *flow.Port
}

func NewFileListNode() *FileListNode {
	n := flow.NewNode(TypeFileList)
	fl := &FileListNode{node: n}
	fl.Dirpath = n.AddValuePort("dirpath", flow.RoleParameter).WithLiteral("")
	fl.Files = n.AddListPort("files", flow.RoleOutput)
	n.OnRun(fl.run)
	return fl
}

func (fl *FileListNode) Def() *flow.Node { return fl.node }

func (fl *FileListNode) run(_ context.Context) error {
	dir := asString(fl.Dirpath.Value())
	if dir == "" {
		return fmt.Errorf("%w: cannot list directory", ErrMissingFilepath)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	fl.Files.SetList(paths)
	return nil
}
