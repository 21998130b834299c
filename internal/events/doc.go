// Package events provides types and interfaces for publishing game events.
//
// Games emit events without knowing who listens, which lets the service and
// transport layers react to selections, matches, reverts and completion
// without the game depending on them.
//
// The primary components are:
// - GameEvent: Something that happened to a single game
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
