package email

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSendReviewOutcomeWithoutCredentialsIsNoop(t *testing.T) {
	svc := NewEmailService(SMTPConfig{}, zerolog.Nop()).(*EmailServiceImpl)
	called := false
	svc.send = func(string, []byte) error { called = true; return nil }

	err := svc.SendReviewOutcome(context.Background(), ReviewOutcome{ToEmail: "a@uni.edu", Kind: KindEvent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("no delivery expected without credentials")
	}
}

func TestSendReviewOutcomeRendersMessage(t *testing.T) {
	svc := NewEmailService(SMTPConfig{
		Username:  "u",
		Password:  "p",
		FromName:  "ClubHub",
		FromEmail: "noreply@uni.edu",
		BaseURL:   "https://clubs.uni.edu",
	}, zerolog.Nop()).(*EmailServiceImpl)

	var to string
	var msg []byte
	svc.send = func(t string, m []byte) error { to, msg = t, m; return nil }

	err := svc.SendReviewOutcome(context.Background(), ReviewOutcome{
		ToEmail:  "ayse@uni.edu",
		ToName:   "Ayşe",
		Kind:     KindClubApplication,
		Subject:  "Chess <Club>",
		Approved: false,
		Note:     "Mission too vague",
	})
	if err != nil {
		t.Fatalf("SendReviewOutcome: %v", err)
	}
	body := string(msg)
	if to != "ayse@uni.edu" {
		t.Fatalf("recipient = %q", to)
	}
	for _, want := range []string{
		"Subject: Your club application was rejected - ClubHub",
		"Chess &lt;Club&gt;",
		"Mission too vague",
		"https://clubs.uni.edu",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("message missing %q:\n%s", want, body)
		}
	}
}
