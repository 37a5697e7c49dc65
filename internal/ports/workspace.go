package ports

// WorkspaceSpec describes a workspace to scaffold.
type WorkspaceSpec struct {
	Root string
}

// WorkspaceInitializer scaffolds a new CMAT workspace.
type WorkspaceInitializer interface {
	Init(spec WorkspaceSpec, force bool) error
}

// WorkspaceLocator finds a CMAT workspace root starting from an arbitrary directory.
type WorkspaceLocator interface {
	FindRoot(startDir string) (string, error)
}
