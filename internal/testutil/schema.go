package testutil

import "github.com/roach88/groqgen/internal/schema"

// BlogSchema returns a small blog schema exercising every field kind the
// interpreter converts, including a self-referencing document (category) and a
// self-referencing registered type (menuItem).
//
// Documents: author, category, post. Registered types: menuItem, seo.
func BlogSchema() *schema.Schema {
	return &schema.Schema{
		Documents: []*schema.Document{
			{
				Name:  "author",
				Title: "Author",
				Fields: []schema.Field{
					{Name: "name", Def: &schema.Def{Type: schema.TypeString, Required: true}},
					{Name: "bio", Def: &schema.Def{Type: schema.TypeArray, Of: []*schema.Def{{Type: schema.TypeBlock}}}},
					{Name: "avatar", Def: &schema.Def{Type: schema.TypeImage}},
				},
			},
			{
				Name:  "category",
				Title: "Category",
				Fields: []schema.Field{
					{Name: "title", Def: &schema.Def{Type: schema.TypeString, Required: true}},
					{Name: "parent", Def: &schema.Def{Type: schema.TypeReference, To: []string{"category"}}},
				},
			},
			{
				Name:  "post",
				Title: "Post",
				Fields: []schema.Field{
					{Name: "title", Def: &schema.Def{Type: schema.TypeString, Required: true}},
					{Name: "slug", Def: &schema.Def{Type: schema.TypeSlug, Required: true}},
					{Name: "author", Def: &schema.Def{Type: schema.TypeReference, To: []string{"author"}}},
					{Name: "categories", Def: &schema.Def{Type: schema.TypeArray, Of: []*schema.Def{
						{Type: schema.TypeReference, To: []string{"category"}},
					}}},
					{Name: "status", Def: &schema.Def{Type: schema.TypeString, Required: true, List: []any{"draft", "published"}}},
					{Name: "rating", Def: &schema.Def{Type: schema.TypeNumber}},
					{Name: "featured", Def: &schema.Def{Type: schema.TypeBoolean, Required: true}},
					{Name: "seo", Def: &schema.Def{Type: "seo"}},
					{Name: "menu", Def: &schema.Def{Type: "menuItem"}},
				},
			},
		},
		RegisteredTypes: []*schema.RegisteredType{
			{Name: "menuItem", Def: &schema.Def{Type: schema.TypeObject, Fields: []schema.Field{
				{Name: "label", Def: &schema.Def{Type: schema.TypeString, Required: true}},
				{Name: "children", Def: &schema.Def{Type: schema.TypeArray, Of: []*schema.Def{{Type: "menuItem"}}}},
			}}},
			{Name: "seo", Def: &schema.Def{Type: schema.TypeObject, Fields: []schema.Field{
				{Name: "metaTitle", Def: &schema.Def{Type: schema.TypeString}},
			}}},
		},
	}
}

// RecursiveSchema returns a schema whose registered types refer to themselves
// through optional fields rather than arrays: node has an optional next node,
// and a and b point at each other.
//
// Documents: page. Registered types: a, b, node.
func RecursiveSchema() *schema.Schema {
	return &schema.Schema{
		Documents: []*schema.Document{
			{
				Name:  "page",
				Title: "Page",
				Fields: []schema.Field{
					{Name: "head", Def: &schema.Def{Type: "node"}},
					{Name: "pair", Def: &schema.Def{Type: "a"}},
				},
			},
		},
		RegisteredTypes: []*schema.RegisteredType{
			{Name: "a", Def: &schema.Def{Type: schema.TypeObject, Fields: []schema.Field{
				{Name: "b", Def: &schema.Def{Type: "b"}},
			}}},
			{Name: "b", Def: &schema.Def{Type: schema.TypeObject, Fields: []schema.Field{
				{Name: "a", Def: &schema.Def{Type: "a"}},
			}}},
			{Name: "node", Def: &schema.Def{Type: schema.TypeObject, Fields: []schema.Field{
				{Name: "label", Def: &schema.Def{Type: schema.TypeString, Required: true}},
				{Name: "next", Def: &schema.Def{Type: "node"}},
			}}},
		},
	}
}

// EmptySchema returns a schema without any types.
func EmptySchema() *schema.Schema {
	return &schema.Schema{}
}
