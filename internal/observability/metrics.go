package observability

const (
	MEventsPublished    MetricKey = "events_published_total"
	MEventsDispatched   MetricKey = "events_dispatched_total"
	MDispatchDuration   MetricKey = "dispatch_duration_seconds"
	MStockEventsHandled MetricKey = "stock_events_handled_total"
)
