package job

// InterruptedReason is recorded on jobs found mid-flight after a restart.
const InterruptedReason = "The analysis was interrupted by a restart. Submit the job again."

// Sanitize repairs jobs left in a non-terminal state by a crash or
// shutdown. A job that already produced a result is promoted to
// completed; one that did not is failed. Terminal jobs pass through
// untouched, so running it twice changes nothing. It returns only the
// jobs it changed.
func Sanitize(jobs []Job) []Job {
	var repaired []Job
	for _, j := range jobs {
		if j.Terminal() {
			continue
		}
		if len(j.Result) > 0 {
			j.Status = StatusCompleted
			j.FailureReason = ""
		} else {
			j.Status = StatusFailed
			j.FailureReason = InterruptedReason
		}
		repaired = append(repaired, j)
	}
	return repaired
}
