package ignore

// DefaultPruneDirs names directories that are never descended into while
// looking for projects: build output, scratch space and version control.
var DefaultPruneDirs = []string{
	"target",
	"tmp",
	".git",
}
