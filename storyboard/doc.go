// Package storyboard turns a plot into an instatoon storyboard: it validates
// the user's input, builds the model prompt, sends it through the LLM client
// and recovers a typed [Storyboard] from the free-form reply.
//
// Recovery itself lives in core/recovery. This package only decides what to
// do with its outcome: log it, count it, and optionally regenerate.
package storyboard
