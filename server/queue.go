package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cast_check/share"
	"cast_check/share/semaphore"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

var (
	eventReady = []byte(`{"event":"ready"}`)
	eventError = []byte(`{"event":"error"}`)
)

type jobQueue struct {
	lock  sync.Mutex
	items []*queueData
	wake  chan struct{}

	sema    *semaphore.Semaphore
	metrics *metrics
}

func newJobQueue(sema *semaphore.Semaphore, m *metrics) *jobQueue {
	return &jobQueue{
		items:   make([]*queueData, 0, 16),
		wake:    make(chan struct{}, 1),
		sema:    sema,
		metrics: m,
	}
}

// Push appends q and tells it how many jobs are ahead.
func (jq *jobQueue) Push(q *queueData) {
	jq.lock.Lock()
	q.Reorder(len(jq.items))
	jq.items = append(jq.items, q)
	jq.metrics.queued.Set(float64(len(jq.items)))
	jq.lock.Unlock()

	select {
	case jq.wake <- struct{}{}:
	default:
	}
}

// pop takes the head of the queue and returns the jobs still waiting.
func (jq *jobQueue) pop() (*queueData, []*queueData) {
	jq.lock.Lock()
	defer jq.lock.Unlock()

	if len(jq.items) == 0 {
		return nil, nil
	}

	q := jq.items[0]
	jq.items[0] = nil
	jq.items = jq.items[1:]
	jq.metrics.queued.Set(float64(len(jq.items)))

	return q, append([]*queueData(nil), jq.items...)
}

// Work hands queued jobs to run, at most as many at once as the semaphore
// allows.
func (jq *jobQueue) Work(ctx context.Context, run func(q *queueData)) {
	for {
		if err := jq.sema.AcquireContext(ctx); err != nil {
			return
		}

		var (
			q    *queueData
			rest []*queueData
		)
		for {
			q, rest = jq.pop()
			if q != nil {
				break
			}

			select {
			case <-jq.wake:
			case <-ctx.Done():
				jq.sema.Release()
				return
			}
		}

		for i, r := range rest {
			r.Reorder(i)
		}

		if q.Skipped() {
			jq.sema.Release()
			continue
		}

		go func() {
			defer jq.sema.Release()

			jq.metrics.running.Inc()
			defer jq.metrics.running.Dec()

			run(q)
		}()
	}
}

////////////////////////////////////////////////////////////////////////////////////////////////////

type queueData struct {
	lock sync.Mutex

	id   uuid.UUID
	conn *websocket.Conn
	body []byte

	context context.Context

	done chan struct{}

	skip bool
}

func newQueueData(ctx context.Context, conn *websocket.Conn, body []byte) *queueData {
	return &queueData{
		id:      uuid.New(),
		conn:    conn,
		body:    body,
		context: ctx,
		done:    make(chan struct{}, 1),
	}
}

func (q *queueData) Skip() {
	q.lock.Lock()
	q.skip = true
	q.lock.Unlock()
}

func (q *queueData) Skipped() bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.skip || q.context.Err() != nil
}

func (q *queueData) write(b []byte) {
	if q.context.Err() != nil {
		return
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	q.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := q.conn.WriteMessage(websocket.TextMessage, b)
	if err != nil && !share.IsClientGoneError(err) {
		logrus.Warnf("%+v", errors.WithStack(err))
	}
}

func (q *queueData) writeEvent(event string, data interface{}) {
	resp := struct {
		Event string      `json:"event"`
		Data  interface{} `json:"data"`
	}{
		Event: event,
		Data:  data,
	}

	b, err := jsoniter.Marshal(&resp)
	if err != nil {
		logrus.Errorf("%+v", errors.WithStack(err))
		q.write(eventError)
		return
	}
	q.write(b)
}

func (q *queueData) Ready() {
	q.write(eventReady)
}

func (q *queueData) Reorder(order int) {
	q.writeEvent("waiting", order)
}

func (q *queueData) Start() {
	q.writeEvent("start", q.id.String())
}

func (q *queueData) Progress(done, total int) {
	q.writeEvent("progress", fmt.Sprintf("%d / %d", done, total))
}

func (q *queueData) Error() {
	q.write(eventError)
}

func (q *queueData) Succ(resp *AnalyzeResponse) {
	q.writeEvent("complete", resp)
}

func (q *queueData) Close() {
	q.lock.Lock()
	defer q.lock.Unlock()

	err := q.conn.WriteControl(websocket.CloseMessage, websockEmptyClosure, time.Now().Add(time.Second))
	if err != nil && !share.IsClientGoneError(err) {
		logrus.Warnf("%+v", errors.WithStack(err))
	}
}
