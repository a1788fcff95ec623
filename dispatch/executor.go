package dispatch

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/exvulsec/safeguard/config"
	"github.com/exvulsec/safeguard/datastore"
	"github.com/exvulsec/safeguard/guard"
	"github.com/exvulsec/safeguard/safe"
)

const seenTTL = 30 * 24 * time.Hour

// Executor polls the queued transactions of the configured safes and feeds
// them through the pipeline and the dispatcher. Each safe is pinned to one
// worker so evaluations for the same safe never interleave, which keeps the
// nonce sequencing of the reject path intact. The worker count bounds the
// pressure on the oracle.
type Executor struct {
	pipeline   *guard.Pipeline
	dispatcher *Dispatcher
	safeClient *safe.Client
	safes      []string
	workers    int
	interval   time.Duration
	items      []chan string

	mu   sync.Mutex
	seen map[string]bool
}

func NewExecutor(pipeline *guard.Pipeline, dispatcher *Dispatcher, safeClient *safe.Client, workers int, interval time.Duration) *Executor {
	if workers <= 0 {
		workers = 1
	}
	items := make([]chan string, workers)
	for i := range items {
		items[i] = make(chan string, 10)
	}
	return &Executor{
		pipeline:   pipeline,
		dispatcher: dispatcher,
		safeClient: safeClient,
		safes:      config.Conf.SafeAPI.Safes,
		workers:    workers,
		interval:   interval,
		items:      items,
		seen:       map[string]bool{},
	}
}

func (e *Executor) Name() string {
	return "GuardExecutor"
}

func (e *Executor) Run(ctx context.Context) {
	for i := 0; i < e.workers; i++ {
		go e.execute(ctx, i)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		e.enqueueSafes()
		select {
		case <-ctx.Done():
			for _, ch := range e.items {
				close(ch)
			}
			return
		case <-ticker.C:
		}
	}
}

func (e *Executor) enqueueSafes() {
	for _, safeAddress := range e.safes {
		e.items[workerIndex(safeAddress, e.workers)] <- safeAddress
	}
}

func (e *Executor) execute(ctx context.Context, workerID int) {
	for safeAddress := range e.items[workerID] {
		startTime := time.Now()
		if err := e.processSafe(ctx, safeAddress); err != nil {
			logrus.Errorf("thread %d: process safe %s is err %v", workerID, safeAddress, err)
			continue
		}
		logrus.Infof("thread %d: processed safe %s queue cost %.2fs", workerID, safeAddress, time.Since(startTime).Seconds())
	}
}

func (e *Executor) processSafe(ctx context.Context, safeAddress string) error {
	queued, err := e.safeClient.QueuedTransactions(ctx, safeAddress)
	if err != nil {
		return err
	}
	for _, tx := range queued {
		if e.markSeen(ctx, tx.SafeTxHash) {
			continue
		}
		conclusion, err := e.pipeline.Run(ctx, safeAddress, tx.SafeTxHash)
		if err != nil {
			// fail closed: no conclusion, no action, retried next cycle
			logrus.Errorf("run pipeline for tx %s is err %v", tx.SafeTxHash, err)
			e.unmarkSeen(ctx, tx.SafeTxHash)
			continue
		}
		if config.Conf.Postgresql.Host != "" {
			if err = conclusion.Insert(); err != nil {
				logrus.Errorf("insert conclusion for tx %s is err %v", tx.SafeTxHash, err)
			}
		}
		pending := tx
		if err = e.dispatcher.Dispatch(ctx, &pending, conclusion); err != nil {
			logrus.Errorf("dispatch tx %s is err %v", tx.SafeTxHash, err)
		}
	}
	return nil
}

// markSeen reports whether the transaction was already handled and records
// it otherwise. Redis backs the set when configured so restarts do not
// re-dispatch, a process-local map covers the rest.
func (e *Executor) markSeen(ctx context.Context, safeTxHash string) bool {
	if datastore.RedisEnabled() {
		key := fmt.Sprintf("guard:seen:%s:%s", config.Conf.Chain.Name, safeTxHash)
		added, err := datastore.Redis().SetNX(ctx, key, time.Now().Unix(), seenTTL).Result()
		if err == nil {
			return !added
		}
		logrus.Errorf("mark tx %s as seen in redis is err %v", safeTxHash, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seen[safeTxHash] {
		return true
	}
	e.seen[safeTxHash] = true
	return false
}

func (e *Executor) unmarkSeen(ctx context.Context, safeTxHash string) {
	if datastore.RedisEnabled() {
		key := fmt.Sprintf("guard:seen:%s:%s", config.Conf.Chain.Name, safeTxHash)
		if err := datastore.Redis().Del(ctx, key).Err(); err != nil {
			logrus.Errorf("unmark tx %s in redis is err %v", safeTxHash, err)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.seen, safeTxHash)
}

func workerIndex(safeAddress string, workers int) int {
	h := fnv.New32a()
	h.Write([]byte(safeAddress))
	return int(h.Sum32() % uint32(workers))
}
