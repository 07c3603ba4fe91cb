package retry

// NewExecutor creates the executor matching policy: a RetryExecutor, wrapped
// in a DeadlineExecutor when the policy sets a maximum duration.
func NewExecutor(policy *Policy, opts ...ExecutorOption) Executor {
	base := NewRetryExecutor(policy, opts...)
	if _, ok := base.Policy().MaxDuration(); !ok {
		return base
	}
	return NewDeadlineExecutor(base, base.clock)
}
