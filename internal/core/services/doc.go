// Package services implements the driving port interfaces.
// Services contain the core query-pipeline logic - intent routing, hybrid
// retrieval, score fusion, diversity reranking, grounded answer synthesis
// and utility tasks - and orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no external dependencies beyond the ports.
package services
