package server

import (
	"context"
	"time"

	"cast_check/share"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const readWait = 10 * time.Second

// routeAnalysis queues one request per websocket connection and streams its
// progress back.
func (s *Server) routeAnalysis(c *gin.Context) {
	ctx, ctxCancel := context.WithCancel(c.Request.Context())
	defer ctxCancel()

	ws, err := websocketUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Warnf("%+v", errors.WithStack(err))
		return
	}
	defer ws.Close()

	////////////////////////////////////////////////////////////////////////////////////////////////////

	q := newQueueData(ctx, ws, nil)
	q.Ready()

	ws.SetReadDeadline(time.Now().Add(readWait))
	_, msg, err := ws.ReadMessage()
	if err != nil {
		if !share.IsClientGoneError(err) {
			logrus.Warnf("%+v", errors.WithStack(err))
		}
		return
	}
	ws.SetReadDeadline(time.Time{})

	if _, err := parseRequest(msg); err != nil {
		logrus.Debugf("%s: %v", q.id, err)
		q.Error()
		q.Close()
		return
	}
	q.body = msg

	////////////////////////////////////////////////////////////////////////////////////////////////////

	go func() {
		defer ctxCancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				q.lock.Lock()
				err := ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
				q.lock.Unlock()
				if err != nil {
					ctxCancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	s.queue.Push(q)

	select {
	case <-q.done:
		q.Close()
		select {
		case <-time.After(readWait):
		case <-ctx.Done():
		}

	case <-ctx.Done():
		logrus.Debugf("%s: client left", q.id)
		q.Skip()
	}
}

func (s *Server) runJob(q *queueData) {
	defer func() { q.done <- struct{}{} }()

	logrus.Infof("Start: %s", q.id)
	q.Start()

	started := time.Now()
	resp, err := s.analyze(q.context, q.body, q.Progress)
	logrus.Infof("End: %s (%s)", q.id, time.Since(started))

	if err != nil {
		if !share.IsContextClosedError(err) {
			logrus.Errorf("%s: %+v", q.id, err)
		}
		q.Error()
		return
	}
	q.Succ(resp)
}
