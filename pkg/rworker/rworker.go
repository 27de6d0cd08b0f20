package rworker

import "sync"

// Job runs fn in its own goroutine, limited by the rate channel capacity.
// A failed job reports to errCh unless a previous error is still pending.
func Job(wg *sync.WaitGroup, fn func() error, rate chan struct{}, errCh chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		rate <- struct{}{}
		if err := fn(); err != nil {
			select {
			case errCh <- err:
			default:
			}
		}
		<-rate
	}()
}
