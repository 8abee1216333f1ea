// Package engine contains the game loop and simulation logic.
//
// ARCHITECTURAL RULE: Game state is owned by a single Engine. The tick loop and
// player actions both mutate it under the same lock, so an action never observes
// a half-applied tick. UI consumers only ever see UIState projections.
package engine
