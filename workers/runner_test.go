package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gymdesk/activity"
	"gymdesk/billing"
	"gymdesk/db/dbtest"
	"gymdesk/metrics"
	"gymdesk/models"
	"gymdesk/reports"
	"gymdesk/tools"

	"github.com/prometheus/client_golang/prometheus"
)

type okGateway struct{ calls atomic.Int32 }

func (g *okGateway) SendMessage(context.Context, string, string) (tools.GatewayResponse, error) {
	g.calls.Add(1)
	return tools.GatewayResponse{StatusCode: 200, Body: `{"sent":"true"}`}, nil
}

func TestRunUnknownJob(t *testing.T) {
	r := NewRunner(nil, 0)
	if _, err := r.Run(context.Background(), "nope"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("err = %v, want ErrUnknownJob", err)
	}
}

func TestRunReturnsJobResult(t *testing.T) {
	boom := errors.New("boom")
	r := NewRunner(metrics.New(prometheus.NewRegistry()), time.Second,
		Job{Name: "ok", Run: func(context.Context) (any, error) { return 7, nil }},
		Job{Name: "bad", Run: func(context.Context) (any, error) { return nil, boom }},
	)

	out, err := r.Run(context.Background(), "ok")
	if err != nil || out != 7 {
		t.Errorf("ok job = %v, %v", out, err)
	}
	if _, err := r.Run(context.Background(), "bad"); !errors.Is(err, boom) {
		t.Errorf("bad job err = %v", err)
	}
	if got := r.Names(); len(got) != 2 || got[0] != "bad" || got[1] != "ok" {
		t.Errorf("names = %v", got)
	}
}

func TestStartRunsImmediately(t *testing.T) {
	runs := make(chan struct{}, 4)
	r := NewRunner(nil, 0,
		Job{Name: JOB_SAVE_DAILY_REPORT, Interval: 24 * time.Hour, Run: func(context.Context) (any, error) {
			runs <- struct{}{}
			return nil, nil
		}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("daily job did not run after Start")
	}
	select {
	case <-runs:
		t.Fatal("daily job ran twice before its interval")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartRunsOnTicker(t *testing.T) {
	var runs atomic.Int32
	r := NewRunner(nil, 0,
		Job{Name: "tick", Interval: 10 * time.Millisecond, Run: func(context.Context) (any, error) {
			runs.Add(1)
			return nil, nil
		}},
		Job{Name: "manual", Run: func(context.Context) (any, error) {
			t.Error("on-demand job must not be scheduled")
			return nil, nil
		}},
	)

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("ticker job ran %d times", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
}

func TestBackOfficeJobs(t *testing.T) {
	conn := dbtest.Open(t)
	today := dbtest.Date(2026, time.March, 15)
	clock := dbtest.Clock(today)

	engine := activity.New(conn, time.UTC)
	engine.Now = clock
	gw := &okGateway{}
	dispatcher := &billing.Dispatcher{DB: conn, Gateway: gw, CountryCode: "55", Location: time.UTC, Now: clock}
	snapshotter := &reports.Snapshotter{DB: conn, Location: time.UTC, Now: clock}

	r := New(Config{}, engine, dispatcher, snapshotter, nil)

	late := dbtest.CreateMember(t, conn, "late@x.com", true)
	dbtest.CreatePayment(t, conn, late.ID, today.AddDate(0, 0, -31), "100")

	out, err := r.Run(context.Background(), JOB_UPDATE_MEMBERS_ACTIVITY)
	if err != nil {
		t.Fatalf("%s: %v", JOB_UPDATE_MEMBERS_ACTIVITY, err)
	}
	if sweep := out.(activity.SweepResult); sweep.Deactivated != 1 {
		t.Errorf("sweep = %+v", sweep)
	}

	out, err = r.Run(context.Background(), JOB_SEND_BILLING_MESSAGES)
	if err != nil {
		t.Fatalf("%s: %v", JOB_SEND_BILLING_MESSAGES, err)
	}
	if res := out.(billing.Result); res.Sent != 1 || gw.calls.Load() != 1 {
		t.Errorf("dispatch = %+v, calls = %d", res, gw.calls.Load())
	}

	out, err = r.Run(context.Background(), JOB_SAVE_DAILY_REPORT)
	if err != nil {
		t.Fatalf("%s: %v", JOB_SAVE_DAILY_REPORT, err)
	}
	if rep := out.(models.DailyReport); rep.PendingStudents != 1 || !rep.Date.Equal(today) {
		t.Errorf("report = %+v", rep)
	}
}
