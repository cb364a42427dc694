package fusion

// Stream is a stand-in for the accelerator stream named throughout spec §3
// and §5: an opaque ordered execution context. Work submitted to a Stream
// runs on a single background goroutine in submission order, modeling a
// real device stream's in-order execution without any actual device code.
// FusionEngine and the Detector adapter submit their kernels to the same
// Stream so the one cudaStreamSynchronize-equivalent call (Detector.Detect)
// is guaranteed to observe every prior kernel's writes.
type Stream struct {
	jobs chan func()
}

// NewStream starts the stream's worker goroutine.
func NewStream() *Stream {
	s := &Stream{jobs: make(chan func(), 64)}
	go s.run()
	return s
}

func (s *Stream) run() {
	for job := range s.jobs {
		job()
	}
}

// Submit enqueues a job to run in order relative to every other job
// submitted to this Stream. It never blocks on the job's execution.
func (s *Stream) Submit(job func()) {
	s.jobs <- job
}

// Sync blocks until every job submitted before this call has finished
// running — the single synchronous device wait per tick (spec §5).
func (s *Stream) Sync() {
	done := make(chan struct{})
	s.Submit(func() { close(done) })
	<-done
}

// Close stops the worker goroutine. No further Submit calls are valid
// afterward.
func (s *Stream) Close() {
	close(s.jobs)
}
