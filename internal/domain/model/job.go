package model

// MetricsJob is one player computation handed to the worker pool. Result
// must be buffered for every job of the batch so workers never block on it.
type MetricsJob struct {
	BatchID string
	Index   int
	Team    string
	Status  PlatformPlayerStatus
	Report  *UploadedReportRow
	Config  *TeamGoalConfig
	Result  chan<- JobResult
}

// JobResult is the outcome of a MetricsJob.
type JobResult struct {
	Index    int
	PlayerID string
	Team     string
	Metrics  PlayerMetrics
	Err      error
}
