package port

// FileWalker lists the candidate files under a root directory.
type FileWalker interface {
	Walk(root string) ([]string, error)
}
