package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sleepscore-bot/internal/domain"
	"sleepscore-bot/internal/repository"
	"sleepscore-bot/internal/telegram"
)

type fakeStore struct {
	records     []domain.Record
	userIDs     []int64
	inserted    []repository.RecordInsertParams
	insertErr   error
	listErr     error
	distinctErr error
}

func (f *fakeStore) Insert(ctx context.Context, params repository.RecordInsertParams) (domain.Record, error) {
	if f.insertErr != nil {
		return domain.Record{}, f.insertErr
	}
	f.inserted = append(f.inserted, params)
	return domain.Record{ID: int64(len(f.inserted)), UserID: params.UserID, Timestamp: params.Timestamp, Score: params.Score}, nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID int64) ([]domain.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Record
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) DistinctUserIDs(ctx context.Context) ([]int64, error) {
	if f.distinctErr != nil {
		return nil, f.distinctErr
	}
	return f.userIDs, nil
}

type fakeTelegram struct {
	telegram.Client

	messages []string
	msgChats []int64
	photos   [][]byte
	sendErr  map[int64]error
}

func (f *fakeTelegram) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := f.sendErr[chatID]; err != nil {
		return err
	}
	f.msgChats = append(f.msgChats, chatID)
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeTelegram) SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error {
	f.photos = append(f.photos, photo)
	return nil
}

func buildTestBot() (*Bot, *fakeStore, *fakeTelegram) {
	st := &fakeStore{}
	tg := &fakeTelegram{}
	b := New(st, tg, zerolog.Nop())
	b.now = func() time.Time {
		return time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
	}
	return b, st, tg
}

func privateText(userID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			From: &telegram.User{ID: userID},
			Chat: telegram.Chat{ID: userID, Type: "private"},
			Text: text,
		},
	}
}

func TestHandleUpdate_ScoreAccepted(t *testing.T) {
	for _, text := range []string{"1", "10", "7.5", " 5 "} {
		t.Run(text, func(t *testing.T) {
			b, st, tg := buildTestBot()

			b.HandleUpdate(context.Background(), privateText(42, text))

			if len(st.inserted) != 1 {
				t.Fatalf("inserted %d records, want 1", len(st.inserted))
			}
			want, _ := strconv.ParseFloat(strings.TrimSpace(text), 64)
			if st.inserted[0].Score != want {
				t.Fatalf("score = %v, want %v", st.inserted[0].Score, want)
			}
			if st.inserted[0].UserID != 42 {
				t.Fatalf("user_id = %d, want 42", st.inserted[0].UserID)
			}
			if st.inserted[0].Timestamp.Location() != time.UTC {
				t.Fatalf("timestamp not in UTC: %v", st.inserted[0].Timestamp)
			}
			if len(tg.messages) != 1 || tg.messages[0] != ackText {
				t.Fatalf("reply = %v, want %q", tg.messages, ackText)
			}
		})
	}
}

func TestHandleUpdate_ScoreRejected(t *testing.T) {
	for _, text := range []string{"0.99", "10.01", "0", "11", "-5", "abc", "", "NaN", "Inf", "7,5"} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			b, st, tg := buildTestBot()

			b.HandleUpdate(context.Background(), privateText(42, text))

			if len(st.inserted) != 0 {
				t.Fatalf("no record should be written for %q", text)
			}
			if len(tg.messages) != 1 || tg.messages[0] != rejectionText {
				t.Fatalf("reply = %v, want %q", tg.messages, rejectionText)
			}
		})
	}
}

func TestHandleUpdate_StoreFailure(t *testing.T) {
	b, st, tg := buildTestBot()
	st.insertErr = errors.New("connection refused")

	b.HandleUpdate(context.Background(), privateText(42, "7"))

	if len(tg.messages) != 1 || tg.messages[0] != failureText {
		t.Fatalf("reply = %v, want generic failure", tg.messages)
	}
}

func TestHandleUpdate_IgnoresGroupsAndEmptyUpdates(t *testing.T) {
	b, st, tg := buildTestBot()

	b.HandleUpdate(context.Background(), telegram.Update{UpdateID: 1})
	b.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 2,
		Message: &telegram.Message{
			From: &telegram.User{ID: 42},
			Chat: telegram.Chat{ID: -100, Type: "group"},
			Text: "7",
		},
	})

	if len(st.inserted) != 0 || len(tg.messages) != 0 {
		t.Fatalf("group and empty updates must be ignored")
	}
}

func TestHandleUpdate_Start(t *testing.T) {
	b, _, tg := buildTestBot()

	b.HandleUpdate(context.Background(), privateText(42, "/start"))

	if len(tg.messages) != 1 || tg.messages[0] != greetingText {
		t.Fatalf("reply = %v, want %q", tg.messages, greetingText)
	}
}

func TestHandleUpdate_UnknownCommand(t *testing.T) {
	b, st, tg := buildTestBot()

	b.HandleUpdate(context.Background(), privateText(42, "/stats"))

	if len(st.inserted) != 0 || len(tg.messages) != 0 {
		t.Fatalf("unknown commands must be ignored")
	}
}

func TestHandleUpdate_ReportNoData(t *testing.T) {
	b, _, tg := buildTestBot()

	rendered := false
	b.render = func([]domain.HourlyAverage) ([]byte, error) {
		rendered = true
		return nil, nil
	}

	b.HandleUpdate(context.Background(), privateText(42, "/report"))

	if rendered {
		t.Fatalf("no chart must be rendered without data")
	}
	if len(tg.messages) != 1 || tg.messages[0] != noDataText {
		t.Fatalf("reply = %v, want %q", tg.messages, noDataText)
	}
}

func TestHandleUpdate_Report(t *testing.T) {
	b, st, tg := buildTestBot()

	at := func(hour int) time.Time {
		return time.Date(2024, time.March, 15, hour, 0, 0, 0, time.UTC)
	}
	st.records = []domain.Record{
		{UserID: 42, Timestamp: at(3), Score: 2},
		{UserID: 42, Timestamp: at(3), Score: 4},
		{UserID: 42, Timestamp: at(3), Score: 6},
		{UserID: 42, Timestamp: at(9), Score: 8},
		{UserID: 99, Timestamp: at(9), Score: 1}, // other user, must not leak in
	}

	var gotAverages []domain.HourlyAverage
	png := []byte("png-bytes")
	b.render = func(averages []domain.HourlyAverage) ([]byte, error) {
		gotAverages = averages
		return png, nil
	}

	b.HandleUpdate(context.Background(), privateText(42, "/report"))

	want := []domain.HourlyAverage{{Hour: 3, Score: 4.0}, {Hour: 9, Score: 8.0}}
	if len(gotAverages) != len(want) {
		t.Fatalf("averages = %+v, want %+v", gotAverages, want)
	}
	for i := range want {
		if gotAverages[i] != want[i] {
			t.Fatalf("averages[%d] = %+v, want %+v", i, gotAverages[i], want[i])
		}
	}
	if len(tg.photos) != 1 || string(tg.photos[0]) != string(png) {
		t.Fatalf("photo not sent: %v", tg.photos)
	}
	if len(tg.messages) != 0 {
		t.Fatalf("unexpected text replies: %v", tg.messages)
	}
}

func TestHandleUpdate_ReportRenderFailure(t *testing.T) {
	b, st, tg := buildTestBot()
	st.records = []domain.Record{{UserID: 42, Timestamp: time.Now().UTC(), Score: 5}}
	b.render = func([]domain.HourlyAverage) ([]byte, error) {
		return nil, errors.New("encoder exploded")
	}

	b.HandleUpdate(context.Background(), privateText(42, "/report"))

	if len(tg.messages) != 1 || tg.messages[0] != failureText {
		t.Fatalf("reply = %v, want generic failure", tg.messages)
	}
}

func TestBroadcast(t *testing.T) {
	b, st, tg := buildTestBot()
	st.userIDs = []int64{1, 2, 3}

	sent, failed, err := b.Broadcast(context.Background())
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if sent != 3 || failed != 0 {
		t.Fatalf("sent=%d failed=%d, want 3/0", sent, failed)
	}
	for _, text := range tg.messages {
		if text != reminderText {
			t.Fatalf("unexpected prompt %q", text)
		}
	}
}

func TestBroadcast_PartialFailure(t *testing.T) {
	b, st, tg := buildTestBot()
	st.userIDs = []int64{1, 2, 3, 4}
	tg.sendErr = map[int64]error{2: errors.New("Forbidden: bot was blocked by the user")}

	sent, failed, err := b.Broadcast(context.Background())
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if sent != 3 || failed != 1 {
		t.Fatalf("sent=%d failed=%d, want 3/1", sent, failed)
	}
	if len(tg.msgChats) != 3 {
		t.Fatalf("delivered chats = %v, all non-failing recipients must be attempted", tg.msgChats)
	}
}

func TestBroadcast_StoreFailure(t *testing.T) {
	b, st, _ := buildTestBot()
	st.distinctErr = errors.New("connection refused")

	if _, _, err := b.Broadcast(context.Background()); err == nil {
		t.Fatalf("expected error when the user list cannot be read")
	}
}

func FuzzHandleScore(f *testing.F) {
	f.Add("7.5")
	f.Add("abc")
	f.Add("-1e300")
	f.Add("10.000000001")

	f.Fuzz(func(t *testing.T, text string) {
		if strings.HasPrefix(text, "/") {
			t.Skip("command dispatch, not score intake")
		}
		b, st, tg := buildTestBot()

		b.HandleUpdate(context.Background(), privateText(42, text))

		score, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		valid := err == nil && domain.ValidScore(score)

		if valid && len(st.inserted) != 1 {
			t.Fatalf("valid input %q wrote %d records", text, len(st.inserted))
		}
		if !valid && len(st.inserted) != 0 {
			t.Fatalf("invalid input %q must not write records", text)
		}
		if len(tg.messages) != 1 {
			t.Fatalf("every text input gets exactly one reply, got %v", tg.messages)
		}
	})
}
