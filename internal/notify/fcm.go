package notify

import (
	"context"

	"firebase.google.com/go/v4/messaging"
	"github.com/samber/lo"
)

// fcmBatchLimit is the multicast token limit of FCM.
const fcmBatchLimit = 500

// FCMSender pushes through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

func NewFCMSender(client *messaging.Client) *FCMSender {
	return &FCMSender{client: client}
}

// Send multicasts in chunks. It only returns an error when nothing was
// delivered; partial failures are reported through the SendReport.
func (s *FCMSender) Send(ctx context.Context, tokens []string, msg Message, opts Options) (SendReport, error) {
	var (
		report  SendReport
		lastErr error
	)
	for _, chunk := range lo.Chunk(tokens, fcmBatchLimit) {
		resp, err := s.client.SendEachForMulticast(ctx, s.multicast(chunk, msg, opts))
		if err != nil {
			lastErr = err
			report.Failed += len(chunk)
			report.FailedTokens = append(report.FailedTokens, chunk...)
			continue
		}
		report.Sent += resp.SuccessCount
		report.Failed += resp.FailureCount
		for i, r := range resp.Responses {
			if !r.Success {
				report.FailedTokens = append(report.FailedTokens, chunk[i])
			}
		}
	}
	if report.Sent == 0 && lastErr != nil {
		return report, lastErr
	}
	return report, nil
}

func (s *FCMSender) multicast(tokens []string, msg Message, opts Options) *messaging.MulticastMessage {
	m := &messaging.MulticastMessage{
		Tokens: tokens,
		Data:   msg.Data,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
	}
	android := &messaging.AndroidConfig{CollapseKey: opts.CollapseKey}
	if opts.HighPriority {
		android.Priority = "high"
	}
	m.Android = android
	return m
}
