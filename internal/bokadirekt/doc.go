// Package bokadirekt provides a read-only client for the BokaDirekt
// availability API.
//
// The client issues a single GET per call against
//
//	{base}/api/availability/{serviceId}/{salonId}/{windowStart}/{staffId}/{windowEnd}?reborn=true
//
// and decodes the normalized ("fromErp") slot list. It never retries.
//
// Errors are classified so callers can tell them apart with errors.As:
//   - *RequestError: the API answered with a non-2xx status
//   - *ParseError: the body is not JSON, or a slot is malformed
//   - anything else: transport failures (connection refused, timeouts,
//     context cancellation), wrapped with %w
//
// A missing or null "fromErp" field is not an error: zero availability is a
// valid answer and yields an empty Availability.
//
// Example usage:
//
//	client := bokadirekt.NewClient(bokadirekt.WithTimeout(10 * time.Second))
//	avail, err := client.FetchAvailability(ctx, bokadirekt.Query{
//	    ServiceID:   "123",
//	    SalonID:     "456",
//	    StaffID:     "789",
//	    WindowStart: 1753056000000,
//	    WindowEnd:   1753048800000,
//	})
package bokadirekt
