// Package metric provides Prometheus metrics for TokStore.
//
// A Registry owns a private prometheus.Registry carrying:
//
//   - tokstore_backend_operations_total{adapter,op,result}
//   - tokstore_backend_operation_duration_seconds{adapter,op}
//   - tokstore_token_operations_total{op,result}
//   - tokstore_token_operation_duration_seconds{op}
//   - tokstore_http_requests_total{method,route,status}
//   - tokstore_build_info{goversion,revision,version}
//   - the Go runtime and process collectors
//
// InstrumentBackend decorates any storage.Backend; the Registry itself
// satisfies the token store's Observer.
package metric
