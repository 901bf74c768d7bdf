package abtest

import (
	"context"

	"go.uber.org/zap"

	"github.com/rushteam/matchkit/core"
)

// assign 返回用户在实验中的分组。分桶是粘性的：
// 首次调用按 TrafficSplit 做一次伯努利抽样并落成参与者记录，
// 此后同一实验内的所有调用都返回首次的分组，生命周期内不可改组。
//
// 抽样与记录写入在同一临界区内完成，并发调用同一用户不会产生两个分组。
func (f *Framework) assign(ctx context.Context, test *core.ABTest, userID string) (core.Group, error) {
	f.mu.Lock()
	byUser, ok := f.participants[test.ID]
	if !ok {
		byUser = make(map[string]*core.Participant)
		f.participants[test.ID] = byUser
	}
	if existing, ok := byUser[userID]; ok {
		f.mu.Unlock()
		return existing.Group, nil
	}

	group := core.GroupControl
	if f.rng() < test.TrafficSplit {
		group = core.GroupTreatment
	}
	participant := &core.Participant{
		TestID:     test.ID,
		UserID:     userID,
		Group:      group,
		AssignedAt: f.now(),
	}
	byUser[userID] = participant
	f.mu.Unlock()

	if f.experiments != nil {
		if err := f.experiments.SaveParticipant(ctx, participant); err != nil {
			f.logger.Error("participant persistence failed, kept in memory",
				zap.String("test_id", test.ID), zap.String("user_id", userID), zap.Error(err))
		}
	}
	return group, nil
}

// Participants 返回实验的参与者快照。
func (f *Framework) Participants(testID string) []*core.Participant {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*core.Participant, 0, len(f.participants[testID]))
	for _, p := range f.participants[testID] {
		out = append(out, p)
	}
	return out
}
