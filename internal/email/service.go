package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/logger"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/metrics"
)

const (
	queueKey       = "emails"
	failedQueueKey = "emails:failed"
	maxTries       = 3
	retryDelay     = 5 * time.Second
)

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// StatusNotice describes a lifecycle change worth telling a family about.
type StatusNotice struct {
	What   string
	When   time.Time
	Status string
	Reason string
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, EmailJob{To: to, Name: name, Kind: "generic", Subject: subject, Body: body})
}

func (s *Service) enqueue(ctx context.Context, job EmailJob) error {
	job.Tries = 0
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		metrics.RecordEmail(job.Kind, "enqueue_failed")
		logger.Errorf("Failed to queue email to %s: %v", job.To, err)
		return err
	}

	metrics.RecordEmail(job.Kind, "queued")
	logger.Infof("Email queued: %s to %s", job.Subject, job.To)
	return nil
}

// Start drains the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < maxTries {
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			metrics.RecordEmail(job.Kind, "failed")
			logger.Errorf("Email to %s failed after %d attempts", job.To, maxTries)
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Kind, "sent")
	metrics.EmailQueueLength.Set(float64(s.QueueLength(ctx)))
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

var bookingSubjects = map[string]string{
	"confirmed": "Запись подтверждена",
	"cancelled": "Запись отменена",
	"completed": "Занятие завершено",
}

var trainingSubjects = map[string]string{
	"accepted":  "Индивидуальная тренировка назначена",
	"declined":  "Индивидуальная тренировка отклонена",
	"completed": "Индивидуальная тренировка завершена",
}

// SendBookingStatus tells an athlete or parent that a class booking moved
// to a new status.
func (s *Service) SendBookingStatus(ctx context.Context, to, name string, n StatusNotice) error {
	return s.enqueue(ctx, EmailJob{
		To:      to,
		Name:    name,
		Kind:    "booking_status",
		Subject: subjectFor(bookingSubjects, n),
		Body:    statusBody(name, n),
	})
}

// SendTrainingStatus is SendBookingStatus for individual training requests.
func (s *Service) SendTrainingStatus(ctx context.Context, to, name string, n StatusNotice) error {
	return s.enqueue(ctx, EmailJob{
		To:      to,
		Name:    name,
		Kind:    "training_status",
		Subject: subjectFor(trainingSubjects, n),
		Body:    statusBody(name, n),
	})
}

func subjectFor(subjects map[string]string, n StatusNotice) string {
	subject, ok := subjects[n.Status]
	if !ok {
		subject = "Статус изменён: " + n.Status
	}
	return subject + " - " + n.What
}

func statusBody(name string, n StatusNotice) string {
	body := fmt.Sprintf(`Здравствуйте, %s!

%s
Дата: %s
Статус: %s
`, name, n.What, n.When.Format("02.01.2006"), n.Status)
	if n.Reason != "" {
		body += "Причина: " + n.Reason + "\n"
	}
	return body + "\n- AIGA Connect"
}
