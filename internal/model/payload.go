package model

// DocumentPayload is what the generation service returns. Every field is
// optional: a partially populated payload is stored and rendered as is,
// with display defaults filled in by WithDefaults.
type DocumentPayload struct {
	Title       string      `json:"title,omitempty"`
	Blueprint   Blueprint   `json:"blueprint"`
	Roadmap     Roadmap     `json:"roadmap"`
	Competitors Competitors `json:"competitors"`
	CaseStudies []CaseStudy `json:"caseStudies"`
}

// Blueprint holds raw markdown sections.
type Blueprint struct {
	ProblemStatement   string `json:"problemStatement,omitempty"`
	TargetUsers        string `json:"targetUsers,omitempty"`
	CoreFeatures       string `json:"coreFeatures,omitempty"`
	UserFlow           string `json:"userFlow,omitempty"`
	SystemArchitecture string `json:"systemArchitecture,omitempty"`
	DatabaseSchema     string `json:"databaseSchema,omitempty"`
	APIDesign          string `json:"apiDesign,omitempty"`
	GeminiIntegration  string `json:"geminiIntegration,omitempty"`
	TechStack          string `json:"techStack,omitempty"`
	SecurityPrivacy    string `json:"securityPrivacy,omitempty"`
	Timeline           string `json:"timeline,omitempty"`
	FutureScaling      string `json:"futureScaling,omitempty"`
}

type Roadmap struct {
	Milestones         []Milestone        `json:"milestones"`
	ResourceAllocation []Resource         `json:"resourceAllocation,omitempty"`
	PriorityQuadrants  *PriorityQuadrants `json:"priorityQuadrants,omitempty"`
}

// Milestone spans days Start..End of the 14-day build, inclusive.
type Milestone struct {
	Name        string `json:"name"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Description string `json:"description,omitempty"`
}

// Resource is a share of effort; Value is a percentage and may be absent.
type Resource struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       int    `json:"value,omitempty"`
}

type PriorityQuadrants struct {
	QuickWins     []PriorityItem `json:"quickWins"`
	StrategicBets []PriorityItem `json:"strategicBets"`
	Maintenance   []PriorityItem `json:"maintenance"`
	Distractions  []PriorityItem `json:"distractions"`
}

type PriorityItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Competitors struct {
	Analysis          string             `json:"analysis,omitempty"`
	List              []Competitor       `json:"list"`
	ComparisonMetrics []ComparisonMetric `json:"comparisonMetrics,omitempty"`
	Differentiators   string             `json:"differentiators,omitempty"`
}

type Competitor struct {
	Name           string `json:"name"`
	Strength       string `json:"strength,omitempty"`
	Weakness       string `json:"weakness,omitempty"`
	MarketPosition string `json:"marketPosition,omitempty"`
	Price          string `json:"price,omitempty"`
	Differentiator string `json:"differentiator,omitempty"`
}

type ComparisonMetric struct {
	Metric      string `json:"metric"`
	OurProduct  string `json:"ourProduct"`
	CompetitorA string `json:"competitorA"`
	CompetitorB string `json:"competitorB"`
}

type CaseStudy struct {
	Name     string `json:"name"`
	Founders string `json:"founders,omitempty"`
	Revenue  string `json:"revenue,omitempty"`
	LogoURL  string `json:"logoUrl,omitempty"`
	Problem  string `json:"problem,omitempty"`
	Approach string `json:"approach,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}

const DefaultDifferentiator = "Coming Soon"

// WithDefaults returns a copy with the display fallbacks applied for the
// roadmap and competitor sub-fields the generator sometimes leaves out.
// The receiver is not modified.
func (p DocumentPayload) WithDefaults() DocumentPayload {
	out := p
	if out.Roadmap.PriorityQuadrants == nil {
		q := defaultQuadrants()
		out.Roadmap.PriorityQuadrants = &q
	}
	if len(out.Roadmap.ResourceAllocation) == 0 {
		out.Roadmap.ResourceAllocation = defaultResources()
	}
	if len(out.Competitors.ComparisonMetrics) == 0 {
		out.Competitors.ComparisonMetrics = defaultMetrics()
	}
	if len(p.Competitors.List) > 0 {
		out.Competitors.List = make([]Competitor, len(p.Competitors.List))
		copy(out.Competitors.List, p.Competitors.List)
		for i := range out.Competitors.List {
			if out.Competitors.List[i].Differentiator == "" {
				out.Competitors.List[i].Differentiator = DefaultDifferentiator
			}
		}
	}
	return out
}

func defaultQuadrants() PriorityQuadrants {
	return PriorityQuadrants{
		QuickWins:     []PriorityItem{{Name: "Auth Module", Reason: "High impact, low difficulty with Firebase/Supabase."}},
		StrategicBets: []PriorityItem{{Name: "Custom AI Engine", Reason: "High impact but heavy R&D required."}},
		Maintenance:   []PriorityItem{{Name: "Admin Dashboard", Reason: "Needed for ops but low user visibility."}},
		Distractions:  []PriorityItem{{Name: "Mobile App", Reason: "Avoid until web PMF is validated."}},
	}
}

func defaultResources() []Resource {
	return []Resource{
		{Name: "Engineering", Description: "Core API development and infra.", Value: 40},
		{Name: "Design", Description: "User interface and prototype design.", Value: 20},
		{Name: "Marketing", Description: "User acquisition and landing pages.", Value: 15},
	}
}

func defaultMetrics() []ComparisonMetric {
	return []ComparisonMetric{
		{Metric: "Ease of Use", OurProduct: "Excellent", CompetitorA: "Average", CompetitorB: "Poor"},
		{Metric: "Cost Efficiency", OurProduct: "Optimized", CompetitorA: "High", CompetitorB: "Low"},
		{Metric: "Feature Set", OurProduct: "Focused MVP", CompetitorA: "Bloated", CompetitorB: "Niche"},
	}
}
