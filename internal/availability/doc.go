// Package availability turns raw BokaDirekt slots into an appointment report.
//
// The Reporter is the single entry point. Each call to GetAvailableTimes
// fetches the configured window once, then formats every slot (long date,
// 24-hour start and end times, duration and price labels, employee name),
// groups slots by date in first-seen order, derives the employee list and the
// price range, and renders a plain-text summary next to the structured Report.
//
// The pipeline is all-or-nothing: either both text and report are returned or
// an error is. Nothing is cached between calls; the employee Directory is
// rebuilt from configuration on every call.
package availability
