package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"
	"github.com/xlab/treeprint"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
	"github.com/LukeThoma5/mortar/internal/openapi"
	"github.com/LukeThoma5/mortar/internal/sdkgen"
)

func runDump(cctx *cli.Context) error {
	s, err := setup(cctx, false)
	if err != nil {
		return err
	}
	if s.cfg.SwaggerEndpoint == "" {
		return fmt.Errorf("no document: set swaggerEndpoint or pass --input")
	}
	raw, err := s.fetcher.ReadSource(cctx.Context, s.cfg.SwaggerEndpoint)
	if err != nil {
		return err
	}
	doc, err := openapi.Decode(raw)
	if err != nil {
		return err
	}
	diags := diagnostic.NewCollector(false, true)
	model, err := sdkgen.Parse(doc, diags)
	if err != nil {
		return err
	}
	fmt.Fprint(cctx.App.Writer, dumpTree(model, sdkgen.NewResolver(model.Schemas, diags)).String())
	return nil
}

func dumpTree(model *sdkgen.Model, r *sdkgen.Resolver) treeprint.Tree {
	tree := treeprint.NewWithRoot("mortar")

	modules := tree.AddBranch(fmt.Sprintf("modules (%d)", len(model.Modules)))
	for _, m := range model.Modules {
		mb := modules.AddBranch(m.Name)
		for _, ep := range m.Endpoints {
			eb := mb.AddBranch(fmt.Sprintf("%s %s %s", ep.Method, ep.Path, ep.ActionName))
			addParams(eb, "route", ep.RouteParams, r)
			addParams(eb, "query", ep.QueryParams, r)
			addParams(eb, "form", ep.FormParams, r)
			if ep.Request != nil {
				eb.AddNode("request: " + r.RenderName(ep.Request))
			}
			if ep.Response != nil {
				eb.AddNode("response: " + r.RenderName(ep.Response))
			}
		}
	}

	groups := make(map[string][]*sdkgen.ConcreteType)
	for _, c := range model.Schemas.All() {
		path := strings.Join(c.Namespace, "/")
		groups[path] = append(groups[path], c)
	}
	paths := make([]string, 0, len(groups))
	for p := range groups {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	schemas := tree.AddBranch(fmt.Sprintf("schemas (%d)", model.Schemas.Len()))
	for _, p := range paths {
		nb := schemas.AddBranch(p)
		for _, c := range groups[p] {
			addSchema(nb, c, r)
		}
	}
	return tree
}

func addParams(b treeprint.Tree, kind string, params []sdkgen.Param, r *sdkgen.Resolver) {
	for _, p := range params {
		b.AddNode(fmt.Sprintf("%s %s: %s", kind, p.Name, r.RenderName(p.Type)))
	}
}

func addSchema(b treeprint.Tree, c *sdkgen.ConcreteType, r *sdkgen.Resolver) {
	label := c.Name
	if c.Generics != nil {
		args := make([]string, len(c.Generics.Arguments))
		for i, a := range c.Generics.Arguments {
			args[i] = r.RenderName(a)
		}
		label += "<" + strings.Join(args, ", ") + ">"
	}
	cb := b.AddMetaBranch(string(c.ID), label)

	switch body := c.Body.(type) {
	case sdkgen.ObjectBody:
		for _, p := range body.Properties {
			line := p.Name + ": " + r.RenderName(p.Type)
			if c.Generics != nil {
				if info, ok := c.Generics.Properties[p.Name]; ok {
					line += " as " + describeGeneric(info, r)
				}
			}
			cb.AddNode(line)
		}
	case sdkgen.EnumBody:
		for _, e := range body.Elements {
			if e.Raw != nil {
				cb.AddNode(e.Key + " = " + *e.Raw)
			} else {
				cb.AddNode(e.Key)
			}
		}
	}
}

// describeGeneric prints a generic parameter tree: positions as T<i>,
// terminals by name, nested lists in brackets.
func describeGeneric(info sdkgen.GenericParamInfo, r *sdkgen.Resolver) string {
	switch v := info.(type) {
	case sdkgen.GenericPosition:
		return fmt.Sprintf("T%d", int(v))
	case sdkgen.GenericTerminal:
		return r.RenderName(v.Type)
	case sdkgen.GenericNested:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = describeGeneric(item, r)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		panic(fmt.Sprintf("unhandled generic parameter %T", info))
	}
}
