package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tojiinoue/kanjikun/internal/pkg/logger"
)

// DefaultQueueSize はディスパッチャのキュー長のデフォルト値
const DefaultQueueSize = 64

// sendTimeout は1通あたりの送信タイムアウト
const sendTimeout = 15 * time.Second

// Dispatcher はメール送信を非同期で処理するワーカー
// 通知はベストエフォートであり、送信失敗してもAPI処理は成功扱いのままにする
type Dispatcher struct {
	mailer Mailer
	queue  chan Email
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewDispatcher は新しいDispatcherインスタンスを作成する
func NewDispatcher(mailer Mailer, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Dispatcher{
		mailer: mailer,
		queue:  make(chan Email, queueSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start はディスパッチャを開始する
func (d *Dispatcher) Start(ctx context.Context) {
	logger.Info("通知ディスパッチャ開始", zap.Int("queue_size", cap(d.queue)))

	defer close(d.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("通知ディスパッチャ停止（コンテキストキャンセル）")
			return
		case <-d.stopCh:
			d.drain()
			logger.Info("通知ディスパッチャ停止（シグナル受信）")
			return
		case email := <-d.queue:
			d.send(email)
		}
	}
}

// Stop はディスパッチャを停止する
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	<-d.doneCh
}

// Enqueue はメールを送信キューに積む
// キューが満杯の場合はブロックせずに破棄する
func (d *Dispatcher) Enqueue(email Email) {
	if email.To == "" {
		return
	}
	select {
	case d.queue <- email:
	default:
		logger.Warn("通知キューが満杯のためメールを破棄",
			zap.String("to", email.To),
			zap.String("subject", email.Subject),
		)
	}
}

// drain は停止前にキューへ積まれた残りのメールを送信する
func (d *Dispatcher) drain() {
	for {
		select {
		case email := <-d.queue:
			d.send(email)
		default:
			return
		}
	}
}

func (d *Dispatcher) send(email Email) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.mailer.Send(ctx, email); err != nil {
		logger.Error("メール送信失敗",
			zap.String("to", email.To),
			zap.String("subject", email.Subject),
			zap.Error(err),
		)
		return
	}

	logger.Debug("メール送信完了",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
	)
}
