package sdkgen

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
	"github.com/LukeThoma5/mortar/internal/openapi"
)

var update = flag.Bool("update", false, "rewrite golden archives with the current output")

const goldenDir = "../../testdata/sdkgen"

// Each archive holds input.json plus the expected endpoints/<Module>.ts and
// mortar/<ns>.ts units.
func TestGenerate_Golden(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join(goldenDir, "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, archives)

	for _, path := range archives {
		t.Run(filepath.Base(path), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			require.NoError(t, err)

			var input []byte
			want := make(map[string]string)
			for _, f := range ar.Files {
				if f.Name == "input.json" {
					input = f.Data
					continue
				}
				want[f.Name] = string(f.Data)
			}
			require.NotNil(t, input, "archive needs input.json")

			doc, err := openapi.Decode(input)
			require.NoError(t, err)
			_, out, err := GenerateDocument(context.Background(), doc, DefaultOptions(), diagnostic.NewCollector(false, false))
			require.NoError(t, err)

			got := make(map[string]string)
			for name, src := range out.Modules {
				got["endpoints/"+name+".ts"] = src
			}
			for _, tf := range out.TypeFiles {
				got[tf.Path+".ts"] = tf.Source
			}

			if *update {
				ar.Files = []txtar.File{{Name: "input.json", Data: input}}
				names := make([]string, 0, len(got))
				for name := range got {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					ar.Files = append(ar.Files, txtar.File{Name: name, Data: []byte(got[name])})
				}
				require.NoError(t, os.WriteFile(path, txtar.Format(ar), 0o644))
				return
			}

			for name, src := range want {
				assert.Equal(t, src, got[name], name)
			}
			for name := range got {
				_, ok := want[name]
				assert.True(t, ok, "unexpected unit %s", name)
			}
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	ar, err := txtar.ParseFile(filepath.Join(goldenDir, "basic.txtar"))
	require.NoError(t, err)
	doc, err := openapi.Decode(ar.Files[0].Data)
	require.NoError(t, err)

	model, err := Parse(doc, nil)
	require.NoError(t, err)

	first, err := Generate(context.Background(), model, DefaultOptions(), nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Generate(context.Background(), model, DefaultOptions(), nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	require.Len(t, first.TypeFiles, 3)
	assert.Equal(t, "mortar/Bars", first.TypeFiles[0].Path)
	assert.Equal(t, "mortar/Common", first.TypeFiles[1].Path)
	assert.Equal(t, "mortar/Foos", first.TypeFiles[2].Path)
}

func TestGenerate_EndpointsOnly(t *testing.T) {
	model := mustParse(t, endpointsDoc)
	opts := DefaultOptions()
	opts.EndpointsOnly = true

	out, err := Generate(context.Background(), model, opts, nil)
	require.NoError(t, err)

	src := out.Modules["Widgets"]
	assert.Contains(t, src, "export const PathFactory = (base_path: string) => ({\n")
	assert.Contains(t, src, "  GetWidget: (routeParams: GetWidgetRouteParams) => `${base_path}widgets/${routeParams.widgetId}`,\n")
	assert.Contains(t, src, "  UploadWidget: `${base_path}widgets`,\n")
	assert.NotContains(t, src, "makeAction")
	assert.Len(t, out.TypeFiles, 2, "type files are still generated")
}

func TestGenerate_BannedNamespaceStopsEverything(t *testing.T) {
	model := mustParse(t, endpointsDoc)
	opts := DefaultOptions()
	opts.BannedNamespaces = []string{"Shop/Widgets"}

	out, err := Generate(context.Background(), model, opts, nil)
	require.ErrorIs(t, err, ErrBannedNamespace)
	assert.Nil(t, out)
	assert.True(t, strings.Contains(err.Error(), "#/components/schemas/Widget"))
}

func TestGenerate_FirstErrorWins(t *testing.T) {
	model := &Model{
		Modules: []Module{{Name: "M", Endpoints: []Endpoint{{Method: Method(9), Path: "/x", ActionName: "X"}}}},
		Schemas: newTableBuilder().freeze(),
	}
	_, err := Generate(context.Background(), model, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrUnknownVerb)
}
