/*
Package resilience guards calls to the durable store.

A Breaker combines a per-call timeout with the circuit breaker pattern, so a
hung or failing disk surfaces as a prompt error instead of stalling every
registry operation behind it.

# Usage

	breaker := resilience.New("store", resilience.Settings{
		CallTimeout: 5 * time.Second,
		OpenTimeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	err := breaker.Execute(ctx, func(ctx context.Context) error {
		return writeDocument(ctx)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open
*/
package resilience
