package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestConcurrentFirstRecordInitializesOnce(t *testing.T) {
	t.Setenv("ENABLE_CLIENT_METRICS", "true")

	// Concurrent first calls from the fetch paths must not race the lazy
	// registration; a double register would panic.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				RecordCacheLookup("ehr/patients", "hit")
			case 1:
				RecordAPIRequest("GET", "/v1/ehr/patients", "success")
			case 2:
				RecordAPIRequestDuration("GET", "/v1/ehr/patients", 5*time.Millisecond)
			case 3:
				RecordTokenRefresh("success")
			}
		}(i)
	}
	wg.Wait()

	if apiRequestsTotal == nil || cacheLookupsTotal == nil {
		t.Fatal("client metrics were not initialized")
	}
}
