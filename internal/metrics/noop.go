package metrics

var _ Metrics = Noop{}

// Noop discards every observation. It is the default when no metrics service is wired.
type Noop struct{}

func (Noop) IncStageRuns(stage string)                       {}
func (Noop) IncBatches(stage string)                         {}
func (Noop) IncItemsFetched(stage string)                    {}
func (Noop) IncItemsFailed(stage string)                     {}
func (Noop) AddRowsWritten(stage string, n int)              {}
func (Noop) SetFrontierSize(stage string, n int)             {}
func (Noop) ObservePacingDelay(seconds float64)              {}
func (Noop) IncThrottled()                                   {}
func (Noop) ObserveReconcile(inserted, updated, deleted int) {}
func (Noop) IncNotifSent()                                   {}
func (Noop) IncNotifFailed()                                 {}
