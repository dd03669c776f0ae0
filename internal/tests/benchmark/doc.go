// Package benchmark provides performance benchmarks for TokStore.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run only the token store paths for one backend:
//
//	go test -bench='BenchmarkToken.*/memory' -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
