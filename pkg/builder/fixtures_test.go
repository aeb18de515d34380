package builder

import (
	"github.com/marshallshelly/pebble-mysql/pkg/registry"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

func testCatalog() *registry.Catalog {
	return registry.MustCatalog(
		schema.MustNew("User",
			schema.NewField("name", schema.String, schema.MaxLength(100)),
			schema.NewField("age", schema.Integer),
			schema.NewField("active", schema.Boolean),
			schema.NewField("profile", schema.Object),
			schema.NewRelation("role", "Role", schema.OneToMany),
			schema.NewRelation("groups", "Group", schema.ManyToMany),
			schema.NewList("tags", schema.String),
		),
		schema.MustNew("Role",
			schema.NewField("name", schema.String),
			schema.NewField("level", schema.Integer),
		),
		schema.MustNew("Group",
			schema.NewField("title", schema.String),
			schema.NewRelation("members", "User", schema.Reverse),
		),
	)
}

func testCompiler(opts ...Option) *Compiler {
	return NewCompiler(testCatalog(), opts...)
}
