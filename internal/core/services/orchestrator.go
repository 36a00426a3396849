package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/quarry-labs/askdoc/internal/core/domain"
	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
	"github.com/quarry-labs/askdoc/internal/core/ports/driving"
	"github.com/quarry-labs/askdoc/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.QueryService = (*Orchestrator)(nil)

// stage identifies a node in the query workflow graph.
type stage string

// Workflow stages. Routing is the unique entry point; Done is terminal.
// After routing, the intent picks exactly one branch: answers run the
// retrieval chain, utility intents run the single utility node.
const (
	stageRouting        stage = "ROUTING"
	stageRetrieving     stage = "RETRIEVING"
	stageFusing         stage = "FUSING"
	stageReranking      stage = "RERANKING"
	stageSynthesizing   stage = "SYNTHESIZING"
	stageRunningUtility stage = "RUNNING_UTILITY"
	stageDone           stage = "DONE"
)

// DefaultTopK is the final result size when none is configured.
const DefaultTopK = 5

// Orchestrator wires the pipeline stages into a workflow over a single
// mutable QueryState. Stages never short-circuit on an already-set state
// error: an empty retrieval still reaches the synthesizer, which then
// returns the fixed fallback.
type Orchestrator struct {
	corpus       driven.ChunkCorpus
	router       *Router
	retriever    *Retriever
	synthesizer  *Synthesizer
	utility      *Utility
	topK         int
	fusionWeight float64
}

// pipeline carries the stage-to-stage intermediates that do not belong
// on the caller-visible QueryState.
type pipeline struct {
	state    *domain.QueryState
	lexical  []domain.RetrievalCandidate
	semantic []domain.RetrievalCandidate
	fused    []domain.FusedResult
}

// NewOrchestrator creates the query orchestrator. The embedding and LLM
// services are injected here rather than read from globals so the core
// stays testable with doubles; either may be nil, degrading to
// lexical-only retrieval or fallback answers respectively.
func NewOrchestrator(
	corpus driven.ChunkCorpus,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
) *Orchestrator {
	return &Orchestrator{
		corpus:       corpus,
		router:       NewRouter(),
		retriever:    NewRetriever(embedder),
		synthesizer:  NewSynthesizer(llm),
		utility:      NewUtility(llm),
		topK:         DefaultTopK,
		fusionWeight: DefaultFusionWeight,
	}
}

// SetVectorSearcher installs a delegated nearest-neighbour backend for
// semantic retrieval.
func (o *Orchestrator) SetVectorSearcher(vs driven.VectorSearcher) {
	o.retriever.SetVectorSearcher(vs)
}

// SetPromptStore sets the prompt store for customisable prompts.
func (o *Orchestrator) SetPromptStore(store driven.PromptStore) {
	o.synthesizer.SetPromptStore(store)
	o.utility.SetPromptStore(store)
}

// SetTopK sets the final result size. Non-positive values are ignored.
func (o *Orchestrator) SetTopK(k int) {
	if k > 0 {
		o.topK = k
	}
}

// SetFusionWeight sets the semantic share of the fused score.
// Values outside [0,1] are ignored.
func (o *Orchestrator) SetFusionWeight(weight float64) {
	if weight >= 0 && weight <= 1 {
		o.fusionWeight = weight
	}
}

// SetLanguages configures the utility translation language pair.
func (o *Orchestrator) SetLanguages(primary, secondary string) {
	o.utility.SetLanguages(primary, secondary)
}

// Process runs one query through the workflow and returns the uniform
// result. Expected failures (empty corpus, provider outage) surface only
// through the result's Error field; an unexpected panic in any stage is
// recovered here and converted into an error-only result rather than
// propagated to the caller.
func (o *Orchestrator) Process(
	ctx context.Context, query string, history []domain.ChatMessage, opts domain.QueryOptions,
) (result domain.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Orchestrator: recovered from panic: %v", r)
			result = domain.QueryResult{
				Citations: []domain.Citation{},
				Metadata:  map[string]any{},
				Error:     fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	state := domain.NewQueryState(query, history)
	state.DocumentScope = opts.DocumentScope
	state.TopK = o.topK
	if opts.TopK > 0 {
		state.TopK = opts.TopK
	}

	o.run(ctx, state)
	return state.Result()
}

// ProcessDocumentTask runs a utility action over a Ready document's full
// assembled text. An unknown or non-utility action returns an error
// immediately: it indicates a caller bug, not a runtime condition.
// Runtime problems (missing document, empty content, model failure) are
// reported through the result's Error field.
func (o *Orchestrator) ProcessDocumentTask(
	ctx context.Context, documentID string, action string,
) (domain.QueryResult, error) {
	intent, err := domain.ParseIntent(action)
	if err != nil {
		return domain.QueryResult{}, err
	}
	if !intent.IsUtility() {
		return domain.QueryResult{}, fmt.Errorf("%w: %q is not a utility action", domain.ErrInvalidIntent, action)
	}

	state := domain.NewQueryState("", nil)
	state.Intent = intent
	state.Metadata["intent"] = string(intent)
	state.Metadata["document_id"] = documentID

	doc, err := o.corpus.GetDocument(ctx, documentID)
	if err != nil {
		state.SetError(fmt.Sprintf("document task error: %v", err))
		return state.Result(), nil
	}
	if !doc.IsReady() {
		state.SetError(fmt.Sprintf("document task error: %v", domain.ErrDocumentNotReady))
		return state.Result(), nil
	}
	state.Metadata["document_title"] = doc.Title

	text, err := o.corpus.DocumentText(ctx, documentID)
	if err != nil {
		state.SetError(fmt.Sprintf("document task error: %v", err))
		return state.Result(), nil
	}
	if text == "" {
		state.SetError("document task error: document has no content chunks")
		return state.Result(), nil
	}
	state.DocumentText = text

	if err := o.utility.Run(ctx, state); err != nil {
		return domain.QueryResult{}, err
	}
	return state.Result(), nil
}

// run drives the workflow state machine to completion.
func (o *Orchestrator) run(ctx context.Context, state *domain.QueryState) {
	p := &pipeline{state: state}
	current := stageRouting

	for current != stageDone {
		logger.Debug("Orchestrator: stage %s", current)

		switch current {
		case stageRouting:
			state.Intent = o.router.Classify(state.Query)
			state.Metadata["intent"] = string(state.Intent)
			logger.Info("Orchestrator: intent %s", state.Intent)
			if state.Intent.IsUtility() {
				current = stageRunningUtility
			} else {
				current = stageRetrieving
			}

		case stageRetrieving:
			o.retrieveNode(ctx, p)
			current = stageFusing

		case stageFusing:
			p.fused = Fuse(p.lexical, p.semantic, o.fusionWeight)
			state.Metadata["num_fused"] = len(p.fused)
			state.Metadata["fusion_weight"] = o.fusionWeight
			current = stageReranking

		case stageReranking:
			o.rerankNode(ctx, p)
			current = stageSynthesizing

		case stageSynthesizing:
			o.synthesizer.Synthesize(ctx, state)
			current = stageDone

		case stageRunningUtility:
			o.utilityNode(ctx, state)
			current = stageDone
		}
	}
}

// retrieveNode takes the corpus snapshot and runs hybrid retrieval.
// All failures here are non-fatal: they are recorded on the state and
// the pipeline continues with whatever candidates exist.
func (o *Orchestrator) retrieveNode(ctx context.Context, p *pipeline) {
	state := p.state

	snapshot, err := o.snapshot(ctx, state)
	if err != nil {
		logger.Warn("Orchestrator: corpus snapshot failed: %v", err)
		state.SetError(fmt.Sprintf("retrieval error: %v", err))
		return
	}

	lexical, semantic, err := o.retriever.Retrieve(ctx, state.Query, snapshot, state.TopK)
	if err != nil {
		state.SetError(fmt.Sprintf("retrieval error: %v", err))
		if errors.Is(err, domain.ErrNoDocuments) {
			return
		}
		// Embedding failure: fall through with the lexical list alone.
	}

	p.lexical = lexical
	p.semantic = semantic
	state.Metadata["num_lexical"] = len(lexical)
	state.Metadata["num_semantic"] = len(semantic)
}

// snapshot reads the per-query chunk snapshot, honouring a document scope.
func (o *Orchestrator) snapshot(ctx context.Context, state *domain.QueryState) ([]domain.Chunk, error) {
	if state.DocumentScope != "" {
		return o.corpus.ReadyChunksForDocument(ctx, state.DocumentScope)
	}
	return o.corpus.ReadyChunks(ctx)
}

// rerankNode truncates the fused list to top-K with diversity selection
// and hydrates the survivors with their document titles.
func (o *Orchestrator) rerankNode(ctx context.Context, p *pipeline) {
	state := p.state
	top := Rerank(p.fused, state.TopK)

	titles := make(map[string]string)
	for _, fr := range top {
		title, ok := titles[fr.Chunk.DocumentID]
		if !ok {
			doc, err := o.corpus.GetDocument(ctx, fr.Chunk.DocumentID)
			if err != nil {
				// Document vanished between snapshot and hydration;
				// fall back to its ID so the citation stays usable.
				title = fr.Chunk.DocumentID
			} else {
				title = doc.Title
			}
			titles[fr.Chunk.DocumentID] = title
		}

		state.RetrievedChunks = append(state.RetrievedChunks, domain.RetrievedChunk{
			Chunk:         fr.Chunk,
			DocumentTitle: title,
			Score:         fr.Score,
		})
	}

	state.Metadata["num_retrieved"] = len(state.RetrievedChunks)
}

// utilityNode runs the utility branch. The router only emits utility
// intents here, so an invalid-intent error is an internal bug and is
// recorded rather than propagated.
func (o *Orchestrator) utilityNode(ctx context.Context, state *domain.QueryState) {
	if err := o.utility.Run(ctx, state); err != nil {
		state.SetError(err.Error())
	}
}
