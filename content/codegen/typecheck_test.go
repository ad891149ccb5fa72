package codegen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/spaghettifunk/contentbuild/content/registry"
)

// loadGenerated writes both files into a throwaway package inside the module, so the
// assets import resolves, and type-checks it.
func loadGenerated(t *testing.T, out *Output) *packages.Package {
	t.Helper()
	dir, err := os.MkdirTemp(".", "typecheck")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "content_gen.go"), out.Declarations, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content_accessors_gen.go"), out.Definitions, 0o644))

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo}
	pkgs, err := packages.Load(cfg, "./"+filepath.ToSlash(dir))
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	for _, e := range pkgs[0].Errors {
		t.Errorf("generated code: %v", e)
	}
	return pkgs[0]
}

func TestGeneratedCodeTypeChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("needs the go tool to load packages")
	}
	reg := buildRegistry(t,
		"Content/icon.png",
		"Content/cube.fbx",
		"Content/ui/icon.png",
		"LearnToads.Game/Shaders/basic.vert",
		"LearnToads.Game/Shaders/basic.frag",
		"Content/readme.txt",
	)
	out, err := Generate(reg, Options{})
	require.NoError(t, err)

	pkg := loadGenerated(t, out)
	require.NotNil(t, pkg.Types)
	scope := pkg.Types.Scope()
	for _, name := range []string{"Images", "Models", "VertexShaders", "FragmentShaders", "UnknownContent", "Content", "New"} {
		assert.NotNil(t, scope.Lookup(name), name)
	}
}

func TestEmptyGeneratedCodeTypeChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("needs the go tool to load packages")
	}
	out, err := Generate(registry.New(), Options{})
	require.NoError(t, err)

	pkg := loadGenerated(t, out)
	assert.NotNil(t, pkg.Types.Scope().Lookup("New"))
}
