// Command loadtest drives request/response traffic through a pair of actor
// spaces and reports throughput.
//
// The two spaces talk over the selected transport:
//
//	TRANSPORT=pipe (default) uses the in-memory pipe
//	TRANSPORT=nats needs a running server, see $NATS_URL
//
// Tune with N (total requests), C (concurrent workers), B (batch size for
// progress reporting).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	natsadapter "github.com/codewandler/aspace-go/adapters/nats"
	"github.com/codewandler/aspace-go/core/protocol"
	"github.com/codewandler/aspace-go/core/registry"
	"github.com/codewandler/aspace-go/core/space"
)

// === Config ===

var (
	logLevel      = slog.LevelWarn
	N             = getEnvInt("N", 100_000)
	C             = getEnvInt("C", 8)
	batchSize     = getEnvInt("B", 10_000)
	transportType = getEnv("TRANSPORT", "pipe")
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}

//

func counterProtocol() *protocol.Protocol {
	return &protocol.Protocol{
		Name: "Counter",
		State: protocol.Schema{
			Fields: map[string]protocol.Field{
				"count": {Type: protocol.TypeNumber, Default: 0},
			},
		},
		Receives: map[string]protocol.Handler{
			"increment": {
				Action:  protocol.Increment("count"),
				Returns: protocol.ReturnField("count"),
			},
			"get": {Returns: protocol.ReturnField("count")},
		},
	}
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(log)

	fmt.Printf("  Requests: %d\n", N)
	fmt.Printf("   Workers: %d\n", C)
	fmt.Printf(" Transport: %s\n", transportType)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	// === server side ===

	reg := registry.New(registry.Options{Log: log})
	checkErr(reg.Register("counter", registry.DeclarativeDescriptor{Protocol: counterProtocol()}))
	counter, err := reg.Spawn("counter", nil)
	checkErr(err)

	server := space.New("server", space.Options{Log: log})
	defer server.Destroy()
	checkErr(server.Register("counter-1", counter))

	client := space.New("client", space.Options{Log: log})
	defer client.Destroy()

	serverTr, clientTr := connect(log)
	_, err = server.AddChannel(serverTr)
	checkErr(err)
	ch, err := client.AddChannel(clientTr)
	checkErr(err)

	remote := ch.Remote("counter-1")

	// === START ===

	fmt.Println("==========================================")
	startAt := time.Now()

	var progressMu sync.Mutex
	lastTime := startAt

	var done atomic.Int64
	var wg sync.WaitGroup
	for range C {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				n := done.Add(1)
				if n > int64(N) {
					return
				}
				_, err := remote.Receive(ctx, "increment", nil)
				checkErr(err)

				if n%100 == 0 {
					print(".")
				}
				if n%int64(batchSize) == 0 {
					mu := getMemUsage()
					progressMu.Lock()
					now := time.Now()
					took := now.Sub(lastTime)
					fmt.Printf(" | %6d requests | %6d ms | %6d req/s | (%d / %d) MiB mem (sys) |\n",
						batchSize, took.Milliseconds(), int(float64(batchSize)/took.Seconds()), mu.Alloc/1024/1024, mu.Sys/1024/1024)
					lastTime = now
					progressMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	// === stats ===

	final, err := remote.Receive(ctx, "get", nil)
	checkErr(err)

	println("")
	println("==========================================")
	took := time.Since(startAt)
	runtime.GC()

	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("  final count: %v\n", final)
	fmt.Printf("  avg. req/s: %d\n", int(float64(N)/took.Seconds()))
}

func connect(log *slog.Logger) (space.Transport, space.Transport) {
	switch transportType {
	case "nats":
		nc := natsadapter.ReuseConnection(natsadapter.ConnectDefault())
		a, err := natsadapter.Dial(natsadapter.TransportConfig{
			Connect: nc, Log: log, Name: "loadtest", Side: natsadapter.SideA,
		})
		checkErr(err)
		b, err := natsadapter.Dial(natsadapter.TransportConfig{
			Connect: nc, Log: log, Name: "loadtest", Side: natsadapter.SideB,
		})
		checkErr(err)
		return a, b
	default:
		a, b := space.NewPipe()
		return a, b
	}
}

// === stats helpers ===

type MemUsage struct {
	Alloc      uint64 // bytes allocated and not yet freed (heap)
	TotalAlloc uint64 // cumulative bytes allocated
	Sys        uint64 // total bytes obtained from OS
	NumGC      uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}
