// Package api serves the router and diagram editing over HTTP.
//
// Routes live under /v1:
//
//	POST   /v1/connect                                  route two rectangles
//	POST   /v1/connect-points                           route two points
//	POST   /v1/repair                                   repair a route
//	GET    /v1/diagrams                                 list stored diagrams
//	POST   /v1/diagrams                                 create a diagram
//	GET    /v1/diagrams/{id}                            snapshot
//	DELETE /v1/diagrams/{id}
//	POST   /v1/diagrams/{id}/shapes                     add a shape
//	PATCH  /v1/diagrams/{id}/shapes/{sid}               move, resize or revert
//	DELETE /v1/diagrams/{id}/shapes/{sid}
//	POST   /v1/diagrams/{id}/connections                connect two shapes
//	PUT    /v1/diagrams/{id}/connections/{cid}/waypoints
//	DELETE /v1/diagrams/{id}/connections/{cid}
//	GET    /v1/diagrams/{id}/svg                        render with Graphviz
//	GET    /v1/diagrams/{id}/live                       websocket session
//	GET    /healthz
//	GET    /version
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}}. Input
// codes map to 400, not-found codes to 404 and everything else to 500.
//
// # Live sessions
//
// A live session streams every event of a diagram to the client and accepts
// move, resize and revert messages. Messages from one client are applied one
// at a time, in order; each is answered with a "result" carrying the
// repaired connections, preceded by the events the edit caused.
package api
