package scheduler

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchCall struct {
	id      string
	payload []byte
}

// newTestWorker создает воркер поверх замоканного клиента Redis и
// записывает все вызовы обработчика
func newTestWorker(t *testing.T) (*Worker, redismock.ClientMock, *[]dispatchCall) {
	t.Helper()

	db, mock := redismock.NewClientMock()

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	calls := &[]dispatchCall{}
	worker := &Worker{
		redisClient: db,
		logger:      logger,
		dispatch: func(_ context.Context, id string, payload []byte) error {
			*calls = append(*calls, dispatchCall{id: id, payload: payload})
			return nil
		},
	}
	return worker, mock, calls
}

// anyArgs игнорирует аргументы команды: время срабатывания в запросе
// зависит от текущих часов
func anyArgs(expected, actual []interface{}) error { return nil }

func TestWorkerRunDue_DispatchesDueTask(t *testing.T) {
	// Подготовка
	worker, mock, calls := newTestWorker(t)
	taskID := "exit-check:11111111-2222-3333-4444-555555555555:0"
	payload := `{"location_id":"11111111-2222-3333-4444-555555555555","check_index":0}`

	// Ожидания
	mock.CustomMatch(anyArgs).ExpectZRangeByScore(dueSetKey, &redis.ZRangeBy{}).SetVal([]string{taskID})
	mock.ExpectZRem(dueSetKey, taskID).SetVal(1)
	mock.ExpectHGet(payloadHashKey, taskID).SetVal(payload)
	mock.ExpectHDel(payloadHashKey, taskID).SetVal(1)

	// Действие
	worker.runDue(context.Background())

	// Проверки
	require.Len(t, *calls, 1)
	assert.Equal(t, taskID, (*calls)[0].id)
	assert.Equal(t, []byte(payload), (*calls)[0].payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerRunDue_SkipsCancelledTask(t *testing.T) {
	// Подготовка: отмена удалила нагрузку между опросом и выполнением
	worker, mock, calls := newTestWorker(t)
	taskID := "exit-check:11111111-2222-3333-4444-555555555555:1"

	// Ожидания: HGet возвращает redis.Nil, HDel и обработчик не вызываются
	mock.CustomMatch(anyArgs).ExpectZRangeByScore(dueSetKey, &redis.ZRangeBy{}).SetVal([]string{taskID})
	mock.ExpectZRem(dueSetKey, taskID).SetVal(1)
	mock.ExpectHGet(payloadHashKey, taskID).RedisNil()

	// Действие
	worker.runDue(context.Background())

	// Проверки
	assert.Empty(t, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerRunDue_LostClaimSkipsTask(t *testing.T) {
	// Подготовка: член уже удалён другим потребителем
	worker, mock, calls := newTestWorker(t)
	taskID := "exit-check:11111111-2222-3333-4444-555555555555:2"

	// Ожидания
	mock.CustomMatch(anyArgs).ExpectZRangeByScore(dueSetKey, &redis.ZRangeBy{}).SetVal([]string{taskID})
	mock.ExpectZRem(dueSetKey, taskID).SetVal(0)

	// Действие
	worker.runDue(context.Background())

	// Проверки
	assert.Empty(t, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
