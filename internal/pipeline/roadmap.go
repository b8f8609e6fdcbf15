package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/roadmap"
	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/jonathan/cv-analyzer/internal/workflow"
)

// Roadmap stages, in execution order
const (
	StageSearch     = "search"
	StageSynthesize = "synthesize"
)

// RoadmapEngine runs the roadmap workflow
type RoadmapEngine = workflow.Engine[types.RoadmapState, types.RoadmapUpdate]

// RoadmapResult is the outcome of a roadmap run
type RoadmapResult = workflow.Result[types.RoadmapState]

// RoadmapDeps are the collaborators of the roadmap workflow. Generator is required.
type RoadmapDeps struct {
	Generator llm.Generator
	// Searcher defaults to offline search links.
	Searcher *roadmap.Searcher
	Log      logrus.FieldLogger
	// OutputPath, when set, is where synthesize writes the roadmap JSON.
	OutputPath string
}

// BuildRoadmapGraph declares search followed by synthesize.
func BuildRoadmapGraph(d RoadmapDeps) (*workflow.Graph[types.RoadmapState, types.RoadmapUpdate], error) {
	if d.Generator == nil {
		return nil, fmt.Errorf("pipeline: generator is required")
	}
	searcher := d.Searcher
	if searcher == nil {
		searcher = roadmap.NewSearcher(roadmap.WithSearchLogger(d.Log))
	}
	synth := roadmap.NewSynthesizer(d.Generator, d.Log)

	search := func(ctx context.Context, st types.RoadmapState) (types.RoadmapUpdate, error) {
		results, err := searcher.Search(ctx, st.SkillsToLearn)
		if err != nil {
			return types.RoadmapUpdate{}, err
		}
		return types.RoadmapUpdate{SearchResults: results}, nil
	}

	synthesize := func(ctx context.Context, st types.RoadmapState) (types.RoadmapUpdate, error) {
		plan, err := synth.Synthesize(ctx, st.SkillsToLearn, st.SearchResults)
		if err != nil {
			return types.RoadmapUpdate{}, err
		}
		u := types.RoadmapUpdate{Roadmap: plan}
		if d.OutputPath != "" {
			path, err := roadmap.Save(plan, d.OutputPath)
			if err != nil {
				return types.RoadmapUpdate{}, err
			}
			u.RoadmapPath = &path
		}
		return u, nil
	}

	g := workflow.NewGraph[types.RoadmapState, types.RoadmapUpdate](RoadmapWorkflow)
	if err := g.AddNode(StageSearch, search, types.FieldSearchResults); err != nil {
		return nil, err
	}
	if err := g.AddNode(StageSynthesize, synthesize, types.FieldRoadmap, types.FieldRoadmapPath); err != nil {
		return nil, err
	}
	if err := g.AddEdge(StageSearch, StageSynthesize); err != nil {
		return nil, err
	}
	return g, nil
}

// NewRoadmapEngine builds and compiles the roadmap workflow.
func NewRoadmapEngine(d RoadmapDeps, opts ...workflow.Option) (*RoadmapEngine, error) {
	g, err := BuildRoadmapGraph(d)
	if err != nil {
		return nil, err
	}
	return g.Compile(opts...)
}
