// Package viewport implements the pan and zoom controller behind the image viewer.
//
// A Controller owns a Transform mapping image pixels to viewport pixels:
//
//	viewport = image*scale + (X, Y)
//
// Wheel input feeds an inertial zoom that decays over several frames around
// the cursor; press/drag/release input pans. Every candidate transform passes
// through Sanitize, which keeps the image covering the viewport and the scale
// uniform.
//
// All Controller methods must be called from a single goroutine. Frame
// callbacks are requested through a FrameScheduler and run on that same
// goroutine; the Controller keeps at most one pending zoom tick and one
// pending pan frame, and input arriving in between only updates the state
// those callbacks read.
package viewport
