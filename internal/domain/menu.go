package domain

// PageKind tells the client how to render a menu page.
type PageKind string

const (
	PageEvaluation PageKind = "evaluation"
	PageGallery    PageKind = "gallery"
)

// MenuItem is one entry of the sidebar menu.
type MenuItem struct {
	Slug     string        `json:"slug"`
	Label    string        `json:"label"`
	Heading  string        `json:"heading"`
	Kind     PageKind      `json:"kind"`
	Category AssetCategory `json:"category,omitempty"`
}

// Menu is the sidebar in display order.
var Menu = []MenuItem{
	{
		Slug:    "human-evaluation",
		Label:   "Human Evaluation",
		Heading: "An Intuitive Web Tool for Evaluating LLM Paraphrase Performance",
		Kind:    PageEvaluation,
	},
	{
		Slug:     "metrics",
		Label:    "Automatic Evaluation Metrics",
		Heading:  "Automatic Evaluation Metrics Deployed in this Study",
		Kind:     PageGallery,
		Category: AssetMetrics,
	},
	{
		Slug:     "models",
		Label:    "Language Models",
		Heading:  "Overview of LLM Studied",
		Kind:     PageGallery,
		Category: AssetModels,
	},
	{
		Slug:     "results",
		Label:    "Results and Findings",
		Heading:  "Comparative Analysis of The Paraphrasing Performance of the LLMs",
		Kind:     PageGallery,
		Category: AssetResults,
	},
	{
		Slug:     "contact",
		Label:    "Contact Us",
		Kind:     PageGallery,
		Category: AssetAbout,
	},
}

// LookupPage finds a menu item by slug.
func LookupPage(slug string) (MenuItem, bool) {
	for _, m := range Menu {
		if m.Slug == slug {
			return m, true
		}
	}
	return MenuItem{}, false
}
