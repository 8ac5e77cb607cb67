package scan

// FileCategory is the closed classification assigned to every discovered
// file, derived from its containing top-level directory and nothing else.
// Downstream stages switch on the tag instead of re-deriving type from
// path strings.
type FileCategory int

const (
	// CategoryNone marks findings attached to root documents rather than
	// scanned content. The scanner itself never emits it.
	CategoryNone FileCategory = iota
	CategoryResource
	CategoryExample
	CategoryPage
	CategoryImage
	CategoryPageTemplate
	CategoryTypeTemplate
	CategoryStyleAsset
	// CategoryOther covers files outside the known category directories.
	// They are reported but never assembled and never counted.
	CategoryOther
)

// Category directory names form the input contract.
const (
	DirResources     = "resources"
	DirExamples      = "examples"
	DirPages         = "pages"
	DirImages        = "images"
	DirPageTemplates = "pagetemplates"
	DirTypeTemplates = "pagetemplates-artifacts"
	DirStyles        = "styles"
)

// String returns the category tag used in reports and the descriptor summary.
func (c FileCategory) String() string {
	switch c {
	case CategoryResource:
		return "resource"
	case CategoryExample:
		return "example"
	case CategoryPage:
		return "page"
	case CategoryImage:
		return "image"
	case CategoryPageTemplate:
		return "page-template"
	case CategoryTypeTemplate:
		return "per-type-template"
	case CategoryStyleAsset:
		return "style-asset"
	case CategoryOther:
		return "other"
	default:
		return ""
	}
}

// Rank orders categories for report and assembly iteration. Root-document
// findings (CategoryNone) sort first so settings problems lead the report.
func (c FileCategory) Rank() int { return int(c) }

// TemplateEligible reports whether files of this category go through token
// substitution. Style assets are copied verbatim except the layout template,
// which the scanner flags per entry.
func (c FileCategory) TemplateEligible() bool {
	switch c {
	case CategoryPage, CategoryPageTemplate, CategoryTypeTemplate:
		return true
	default:
		return false
	}
}

// CategoryForDir maps a top-level directory name to its category.
// Classification is a pure function of the containing directory.
func CategoryForDir(dir string) FileCategory {
	switch dir {
	case DirResources:
		return CategoryResource
	case DirExamples:
		return CategoryExample
	case DirPages:
		return CategoryPage
	case DirImages:
		return CategoryImage
	case DirPageTemplates:
		return CategoryPageTemplate
	case DirTypeTemplates:
		return CategoryTypeTemplate
	case DirStyles:
		return CategoryStyleAsset
	default:
		return CategoryOther
	}
}

// ContentCategories lists the categories that count as guide content, in
// canonical report order.
func ContentCategories() []FileCategory {
	return []FileCategory{
		CategoryResource,
		CategoryExample,
		CategoryPage,
		CategoryImage,
		CategoryPageTemplate,
		CategoryTypeTemplate,
		CategoryStyleAsset,
	}
}
