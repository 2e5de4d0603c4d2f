package filter

// defaultLockFileNames lists dependency lock files hidden unless lock files are included.
var defaultLockFileNames = []string{
	"Cargo.lock",
	"package-lock.json",
	"npm-shrinkwrap.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"bun.lockb",
	"Gemfile.lock",
	"poetry.lock",
	"Pipfile.lock",
	"uv.lock",
	"composer.lock",
	"mix.lock",
	"Podfile.lock",
	"flake.lock",
	"go.sum",
}

// LockFileSet is a set of exact, case-sensitive lock file names.
type LockFileSet map[string]struct{}

// NewLockFileSet returns the default lock file names together with extra names.
func NewLockFileSet(extraNames ...string) LockFileSet {
	set := make(LockFileSet, len(defaultLockFileNames)+len(extraNames))
	for _, name := range defaultLockFileNames {
		set[name] = struct{}{}
	}
	for _, name := range extraNames {
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// Contains reports whether name is a lock file.
func (set LockFileSet) Contains(name string) bool {
	_, found := set[name]
	return found
}
