package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/wolfman30/dental-receptionist/internal/calendar"
	appconfig "github.com/wolfman30/dental-receptionist/internal/config"
	"github.com/wolfman30/dental-receptionist/internal/daylock"
	"github.com/wolfman30/dental-receptionist/internal/notify"
	"github.com/wolfman30/dental-receptionist/internal/scheduling"
	"github.com/wolfman30/dental-receptionist/pkg/logging"
)

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when REDIS_ADDR is empty")
	}
}

func TestBuildRedisClientVerifiesConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	defer client.Close()

	locker := BuildDayLocker(client, cfg, logging.New("error"))
	if _, ok := locker.(*daylock.RedisLocker); !ok {
		t.Fatalf("expected redis locker, got %T", locker)
	}
}

func TestBuildRedisClientUnreachableReturnsNil(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logging.New("error"), true); client != nil {
		t.Fatalf("expected nil client when redis is down")
	}
}

func TestBuildDayLockerWithoutRedisIsNilInterface(t *testing.T) {
	if locker := BuildDayLocker(nil, &appconfig.Config{}, nil); locker != nil {
		t.Fatalf("expected nil locker, got %T", locker)
	}
}

func TestBuildAuditorWithoutDatabase(t *testing.T) {
	db, err := BuildAuditDB(context.Background(), &appconfig.Config{}, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != nil {
		t.Fatalf("expected no database when DATABASE_URL is empty")
	}
	if auditor := BuildAuditor(nil); auditor != nil {
		t.Fatalf("expected nil auditor, got %T", auditor)
	}
}

func TestBuildCalendarMemory(t *testing.T) {
	cfg := &appconfig.Config{CalendarBackend: appconfig.CalendarMemory}
	cal, err := BuildCalendar(context.Background(), cfg, scheduling.DefaultBusinessCalendar(), logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cal.(*calendar.MemoryCalendar); !ok {
		t.Fatalf("expected memory calendar, got %T", cal)
	}
}

func TestBuildCalendarRejectsUnknownBackend(t *testing.T) {
	cfg := &appconfig.Config{CalendarBackend: "outlook"}
	if _, err := BuildCalendar(context.Background(), cfg, scheduling.DefaultBusinessCalendar(), logging.New("error")); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestBuildCalendarGoogleWithoutCredentials(t *testing.T) {
	cfg := &appconfig.Config{CalendarBackend: appconfig.CalendarGoogle, CalendarID: "primary"}
	if _, err := BuildCalendar(context.Background(), cfg, scheduling.DefaultBusinessCalendar(), logging.New("error")); err == nil {
		t.Fatalf("expected error when no google credentials are configured")
	}
}

func TestBuildEmailSenderFallsBackToStub(t *testing.T) {
	tests := []struct {
		name string
		cfg  *appconfig.Config
	}{
		{"nil config", nil},
		{"stub", &appconfig.Config{EmailProvider: appconfig.EmailStub}},
		{"sendgrid without key", &appconfig.Config{EmailProvider: appconfig.EmailSendGrid}},
		{"ses without aws config", &appconfig.Config{EmailProvider: appconfig.EmailSES, SESFromEmail: "desk@clinic.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, provider := BuildEmailSender(tt.cfg, nil, logging.New("error"))
			if provider != appconfig.EmailStub {
				t.Fatalf("expected stub provider, got %s", provider)
			}
			if _, ok := sender.(*notify.StubEmailSender); !ok {
				t.Fatalf("expected stub sender, got %T", sender)
			}
		})
	}
}

func TestBuildEmailSenderSendGrid(t *testing.T) {
	cfg := &appconfig.Config{
		EmailProvider:     appconfig.EmailSendGrid,
		SendGridAPIKey:    "SG.test",
		SendGridFromEmail: "desk@clinic.example",
	}
	sender, provider := BuildEmailSender(cfg, nil, logging.New("error"))
	if provider != appconfig.EmailSendGrid {
		t.Fatalf("expected sendgrid provider, got %s", provider)
	}
	if _, ok := sender.(*notify.SendGridSender); !ok {
		t.Fatalf("expected sendgrid sender, got %T", sender)
	}
}

func TestBuildNotifier(t *testing.T) {
	if n := BuildNotifier(&appconfig.Config{BusinessName: "Smile Dental"}, nil, logging.New("error")); n == nil {
		t.Fatalf("expected notifier")
	}
}

func TestBuildLLMClientRequiresConfig(t *testing.T) {
	if _, _, err := BuildLLMClient(context.Background(), nil, nil, logging.New("error")); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildLLMClientNoneReturnsNil(t *testing.T) {
	client, cleanup, err := BuildLLMClient(context.Background(), &appconfig.Config{LLMProvider: appconfig.LLMNone}, nil, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if client != nil {
		t.Fatalf("expected nil client, got %T", client)
	}
}

func TestBuildLLMClientBedrockNeedsAWSConfig(t *testing.T) {
	cfg := &appconfig.Config{LLMProvider: appconfig.LLMBedrock, BedrockModelID: "anthropic.claude-3-haiku"}
	if _, _, err := BuildLLMClient(context.Background(), cfg, nil, logging.New("error")); err == nil {
		t.Fatalf("expected error without aws config")
	}
}

func TestBuildAnalyzerWithoutLLMUsesKeywords(t *testing.T) {
	analyzer := BuildAnalyzer(nil, &appconfig.Config{BusinessName: "Smile Dental"}, scheduling.DefaultBusinessCalendar(), logging.New("error"))
	got := analyzer.Analyze(context.Background(), "I have a terrible toothache and my face is swollen")
	if got.Source != "keywords" {
		t.Fatalf("expected keyword analysis, got %s", got.Source)
	}
}
