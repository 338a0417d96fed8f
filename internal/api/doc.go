// Package api contains the registry's client-facing surfaces.
//
// Handlers are organized by transport:
//
//   - httpapi/: the JSON HTTP API for issuance, transfers, metadata
//     resolution, and registry administration
//   - feed/: the websocket event feed broadcasting committed registry
//     events to subscribers
//   - mcpserver/: MCP tools and resources backed by the in-process
//     registry service
//
// All surfaces delegate mutations to the registry service so capability
// checks, metrics, and feed notifications stay in one place.
package api
