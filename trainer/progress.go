package trainer

import (
	"context"
	"math"

	"github.com/rushteam/matchkit/core"
)

// trainRun 承载单次训练运行的全部状态：配置、进度订阅、早停窗口。
type trainRun struct {
	trainer *Trainer
	ctx     context.Context
	cfg     core.ModelConfig
	data    *core.TrainingData

	progressCh chan core.TrainingStep
	progressFn func(core.TrainingStep)

	history []core.TrainingStep

	// 早停窗口
	bestLoss  float64
	sinceBest int
	started   bool
}

// tick 在每个迭代边界调用：检查取消、记录进度、判定早停。
// 返回 stop = true 表示应提前结束（早停命中），error 非空表示训练被取消。
func (r *trainRun) tick(iteration int, loss float64) (bool, error) {
	if r.ctx != nil {
		select {
		case <-r.ctx.Done():
			return false, ErrTrainingCanceled
		default:
		}
	}
	if r.trainer.cancelFlag.Load() {
		return false, ErrTrainingCanceled
	}

	step := core.TrainingStep{
		Iteration: iteration,
		Progress:  float64(iteration+1) / float64(r.cfg.MaxIterations),
		Loss:      loss,
	}
	r.history = append(r.history, step)
	r.emit(step, false)

	return r.earlyStop(loss), nil
}

// earlyStop 维护早停窗口：最近 patience 步内损失相对改善不足 tolerance
// 即判定收敛。patience = 0 表示关闭早停。
func (r *trainRun) earlyStop(loss float64) bool {
	patience := r.cfg.EarlyStoppingPatience
	if patience <= 0 {
		return false
	}

	if !r.started {
		r.started = true
		r.bestLoss = loss
		return false
	}

	improvement := r.bestLoss - loss
	threshold := r.cfg.EarlyStoppingTolerance * math.Max(math.Abs(r.bestLoss), 1e-12)
	if improvement > threshold {
		r.bestLoss = loss
		r.sinceBest = 0
		return false
	}
	r.sinceBest++
	return r.sinceBest >= patience
}

// emitTerminal 发送完成终态事件（保证送达，不受丢弃策略影响）。
func (r *trainRun) emitTerminal() {
	last := len(r.history) - 1
	step := core.TrainingStep{Progress: 1}
	if last >= 0 {
		step.Iteration = r.history[last].Iteration
		step.Loss = r.history[last].Loss
	}
	r.emit(step, true)
}

// emitFailure 发送失败/取消终态事件（Failed = true，保证送达）。
// Progress 停留在中断处，不伪装成 1。
func (r *trainRun) emitFailure() {
	step := core.TrainingStep{Failed: true}
	if last := len(r.history) - 1; last >= 0 {
		step.Iteration = r.history[last].Iteration
		step.Progress = r.history[last].Progress
		step.Loss = r.history[last].Loss
	}
	r.emit(step, true)
}

// emit 发送进度事件。发送永不阻塞训练循环：
// 中间事件在 channel 满时丢弃最旧的一条再尝试；终态事件循环腾位直到送达。
func (r *trainRun) emit(step core.TrainingStep, terminal bool) {
	if r.progressFn != nil {
		r.progressFn(step)
	}
	if r.progressCh == nil {
		return
	}

	if cap(r.progressCh) == 0 {
		// 无缓冲 channel 无法做丢弃最旧：中间事件尽力而为，终态事件阻塞送达
		if terminal {
			r.progressCh <- step
			return
		}
		select {
		case r.progressCh <- step:
		default:
		}
		return
	}

	for {
		select {
		case r.progressCh <- step:
			return
		default:
		}
		// channel 满：丢最旧的一条腾出位置
		select {
		case <-r.progressCh:
		default:
		}
		if !terminal {
			// 中间事件只重试一次，抢不到位置就丢弃自己
			select {
			case r.progressCh <- step:
			default:
			}
			return
		}
	}
}
