package app

import (
	"fmt"

	"mvp-foundry/internal/format"
	"mvp-foundry/internal/model"
)

type Tab string

const (
	TabBlueprint   Tab = "blueprint"
	TabRoadmap     Tab = "roadmap"
	TabCompetitors Tab = "competitors"
	TabCaseStudies Tab = "caseStudies"
)

// SprintDays is the length of the build roadmap milestones are laid on.
const SprintDays = 14

func (t Tab) Valid() bool {
	switch t {
	case TabBlueprint, TabRoadmap, TabCompetitors, TabCaseStudies:
		return true
	}
	return false
}

type SectionView struct {
	Key       string         `json:"key"`
	Title     string         `json:"title"`
	MentorTip bool           `json:"mentor_tip,omitempty"`
	Blocks    []format.Block `json:"blocks"`
}

type MilestoneView struct {
	model.Milestone
	DayLabel  string  `json:"day_label"`
	OffsetPct float64 `json:"offset_pct"`
	WidthPct  float64 `json:"width_pct"`
}

type RoadmapView struct {
	Milestones         []MilestoneView         `json:"milestones"`
	ResourceAllocation []model.Resource        `json:"resource_allocation"`
	PriorityQuadrants  model.PriorityQuadrants `json:"priority_quadrants"`
}

type CompetitorsView struct {
	List              []model.Competitor       `json:"list"`
	ComparisonMetrics []model.ComparisonMetric `json:"comparison_metrics"`
}

// BlueprintView is a document prepared for one display tab: raw text
// sections are parsed into blocks and structured fields carry their
// display defaults.
type BlueprintView struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	OriginalPrompt string            `json:"original_prompt"`
	CreatedAt      int64             `json:"created_at"`
	Tab            Tab               `json:"tab"`
	Sections       []SectionView     `json:"sections"`
	Roadmap        *RoadmapView      `json:"roadmap,omitempty"`
	Competitors    *CompetitorsView  `json:"competitors,omitempty"`
	CaseStudies    []model.CaseStudy `json:"case_studies,omitempty"`
}

type rawSection struct {
	key, title string
	content    string
	mentorTip  bool
	optional   bool
}

func BuildView(doc model.Document, tab Tab) *BlueprintView {
	content := doc.Content.WithDefaults()
	view := &BlueprintView{
		ID:             doc.ID,
		Title:          doc.Title,
		OriginalPrompt: doc.OriginalPrompt,
		CreatedAt:      doc.CreatedAt,
		Tab:            tab,
		Sections:       []SectionView{},
	}

	switch tab {
	case TabBlueprint:
		view.Sections = parseSections(blueprintSections(content.Blueprint))
	case TabRoadmap:
		view.Roadmap = &RoadmapView{
			Milestones:         milestoneViews(content.Roadmap.Milestones),
			ResourceAllocation: content.Roadmap.ResourceAllocation,
			PriorityQuadrants:  *content.Roadmap.PriorityQuadrants,
		}
	case TabCompetitors:
		view.Sections = parseSections([]rawSection{
			{key: "analysis", title: "Market Landscape", content: content.Competitors.Analysis},
			{key: "differentiators", title: "Strategic Differentiators", content: content.Competitors.Differentiators, mentorTip: true},
		})
		view.Competitors = &CompetitorsView{
			List:              content.Competitors.List,
			ComparisonMetrics: content.Competitors.ComparisonMetrics,
		}
		if view.Competitors.List == nil {
			view.Competitors.List = []model.Competitor{}
		}
	case TabCaseStudies:
		view.CaseStudies = content.CaseStudies
		if view.CaseStudies == nil {
			view.CaseStudies = []model.CaseStudy{}
		}
	}
	return view
}

func blueprintSections(b model.Blueprint) []rawSection {
	return []rawSection{
		{key: "problemStatement", title: "Problem Statement", content: b.ProblemStatement},
		{key: "targetUsers", title: "Target Users", content: b.TargetUsers},
		{key: "coreFeatures", title: "Core Features", content: b.CoreFeatures},
		{key: "userFlow", title: "User Flow", content: b.UserFlow},
		{key: "systemArchitecture", title: "System Architecture", content: b.SystemArchitecture},
		{key: "databaseSchema", title: "Database Schema", content: b.DatabaseSchema},
		{key: "apiDesign", title: "API Design", content: b.APIDesign},
		{key: "geminiIntegration", title: "AI Integration Strategy", content: b.GeminiIntegration},
		{key: "techStack", title: "Tech Stack", content: b.TechStack},
		{key: "securityPrivacy", title: "Security & Privacy", content: b.SecurityPrivacy},
		{key: "timeline", title: "14-Day Build Roadmap", content: b.Timeline},
		{key: "futureScaling", title: "Future Scaling", content: b.FutureScaling, optional: true},
	}
}

// parseSections runs every section through the block parser independently.
func parseSections(sections []rawSection) []SectionView {
	out := make([]SectionView, 0, len(sections))
	for _, sec := range sections {
		if sec.optional && sec.content == "" {
			continue
		}
		out = append(out, SectionView{
			Key:       sec.key,
			Title:     sec.title,
			MentorTip: sec.mentorTip,
			Blocks:    format.Parse(sec.content),
		})
	}
	return out
}

func milestoneViews(milestones []model.Milestone) []MilestoneView {
	out := make([]MilestoneView, 0, len(milestones))
	for _, m := range milestones {
		label := fmt.Sprintf("Day %d", m.Start)
		if m.End != m.Start {
			label = fmt.Sprintf("Day %d - %d", m.Start, m.End)
		}
		out = append(out, MilestoneView{
			Milestone: m,
			DayLabel:  label,
			OffsetPct: float64(m.Start-1) / SprintDays * 100,
			WidthPct:  float64(m.End-m.Start+1) / SprintDays * 100,
		})
	}
	return out
}
