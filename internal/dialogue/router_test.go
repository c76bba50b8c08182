package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/mood-assistant/internal/extract"
	"github.com/nhle/mood-assistant/internal/model"
	"github.com/nhle/mood-assistant/internal/store"
	"github.com/nhle/mood-assistant/tests/testutil"
)

var fixedNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.FixedZone("CST", 8*60*60))

type stubWeather struct {
	mu    sync.Mutex
	calls []string
}

func (s *stubWeather) Describe(_ context.Context, city string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, city)
	return "weather:" + city
}

type brokenStore struct{}

var errBroken = errors.New("disk on fire")

func (brokenStore) AddTask(context.Context, string, model.TaskDraft) (*model.Task, error) {
	return nil, errBroken
}

func (brokenStore) CompleteTask(context.Context, string, string) (*model.Task, error) {
	return nil, errBroken
}

func (brokenStore) Summarize(context.Context, string) (*model.TaskSummary, error) {
	return nil, errBroken
}

type fixture struct {
	router  *Router
	store   store.Store
	weather *stubWeather
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	st := testutil.NewTestStore(t)
	w := &stubWeather{}
	return &fixture{
		router: NewRouter(Deps{
			Store:     st,
			Extractor: extract.New(extract.WithClock(func() time.Time { return fixedNow })),
			Weather:   w,
			Logger:    zap.New(core),
		}),
		store:   st,
		weather: w,
		logs:    logs,
	}
}

func (f *fixture) say(user, text string) []Block {
	return f.router.Handle(context.Background(), Message{UserID: user, Text: text})
}

func (f *fixture) press(user, data string) []Block {
	return f.router.Handle(context.Background(), Postback{UserID: user, Data: data})
}

func onlyText(t *testing.T, blocks []Block) string {
	t.Helper()
	require.NotEmpty(t, blocks)
	txt, ok := blocks[0].(Text)
	require.True(t, ok, "first block is %T", blocks[0])
	return txt.Text
}

func assertEndsWithMainMenu(t *testing.T, blocks []Block) {
	t.Helper()
	require.NotEmpty(t, blocks)
	menu, ok := blocks[len(blocks)-1].(ChoiceMenu)
	require.True(t, ok, "last block is %T", blocks[len(blocks)-1])
	assert.Equal(t, MainMenu(), menu)
}

func TestGreetingAndFollow(t *testing.T) {
	f := newFixture(t)

	for _, blocks := range [][]Block{
		f.say("u1", "  你好 "),
		f.router.Handle(context.Background(), Follow{UserID: "u1"}),
	} {
		require.Len(t, blocks, 2)
		assert.Equal(t, greetingText, onlyText(t, blocks))
		assertEndsWithMainMenu(t, blocks)
	}
}

func TestWeatherMessage(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "weather:高雄", onlyText(t, f.say("u1", "高雄天氣")))
	assert.Equal(t, "weather:"+DefaultCity, onlyText(t, f.say("u1", "天氣")))
	assert.Equal(t, []string{"高雄", DefaultCity}, f.weather.calls)
}

func TestWeatherWithoutService(t *testing.T) {
	r := NewRouter(Deps{Store: testutil.NewTestStore(t)})
	blocks := r.Handle(context.Background(), Message{UserID: "u1", Text: "台北天氣"})
	assert.Equal(t, weatherUnavailableText, onlyText(t, blocks))
}

func TestSurveyByButtons(t *testing.T) {
	f := newFixture(t)

	blocks := f.press("u1", ActStartSurvey)
	require.Len(t, blocks, 1)
	card, ok := blocks[0].(ProgressCard)
	require.True(t, ok)
	assert.Equal(t, "25% (1/4)", card.ProgressLabel)
	assert.Equal(t, "📋 情緒自我檢測 - 25% (1/4)", card.Title)
	assert.True(t, strings.HasPrefix(card.Prompt, "💭 在過去14天內，"))
	require.Len(t, card.Options, 4)
	assert.Equal(t, Option{Label: "幾天", Data: "survey_0_1"}, card.Options[1])

	for i, v := range []int{0, 1, 2} {
		blocks = f.press("u1", SurveyAnswerData(i, v))
		require.Len(t, blocks, 1)
		next, ok := blocks[0].(ProgressCard)
		require.True(t, ok)
		assert.Equal(t, SurveyAnswerData(i+1, 0), next.Options[0].Data)
	}

	blocks = f.press("u1", SurveyAnswerData(3, 3))
	require.Len(t, blocks, 2)
	report := onlyText(t, blocks)
	assert.Contains(t, report, "你的情緒狀態良好")
	assert.Contains(t, report, "焦慮程度較高")
	assertEndsWithMainMenu(t, blocks)

	assert.Nil(t, f.press("u1", SurveyAnswerData(3, 3)), "late duplicate is dropped")
}

func TestSurveyByTextLabels(t *testing.T) {
	f := newFixture(t)

	assert.Empty(t, f.say("u1", "幾乎每天"), "label without a session is dropped")

	f.press("u1", ActStartSurvey)
	for _, label := range []string{"幾乎每天", "幾乎每天", "一半以上的天數"} {
		blocks := f.say("u1", label)
		_, ok := blocks[0].(ProgressCard)
		require.True(t, ok)
	}
	blocks := f.say("u1", "完全不會")
	report := onlyText(t, blocks)
	assert.Contains(t, report, "建議尋求專業心理諮商協助")
	assert.Contains(t, report, "有些許焦慮")
}

func TestSurveyMixedChannelsAgree(t *testing.T) {
	f := newFixture(t)
	f.press("u1", ActStartSurvey)

	f.say("u1", "幾天")
	f.press("u1", SurveyAnswerData(1, 1))

	s, ok := f.router.Survey().Session("u1")
	require.True(t, ok)
	assert.Equal(t, []int{1, 1}, s.Answers)
}

func TestSurveyStaleButtonRepresentsCurrentQuestion(t *testing.T) {
	f := newFixture(t)
	f.press("u1", ActStartSurvey)
	f.press("u1", SurveyAnswerData(0, 2))

	blocks := f.press("u1", SurveyAnswerData(0, 2))
	require.Len(t, blocks, 1)
	card := blocks[0].(ProgressCard)
	assert.Equal(t, "50% (2/4)", card.ProgressLabel)

	s, _ := f.router.Survey().Session("u1")
	assert.Len(t, s.Answers, s.CurrentQuestion)
	assert.Equal(t, 1, s.CurrentQuestion)
}

func TestSurveyButtonWithoutSessionStartsOne(t *testing.T) {
	f := newFixture(t)

	blocks := f.press("u1", SurveyAnswerData(0, 1))
	card := blocks[0].(ProgressCard)
	assert.Equal(t, "50% (2/4)", card.ProgressLabel)
	assert.True(t, f.router.Survey().Active("u1"))
}

func TestSurveyOutOfRangeValueIgnored(t *testing.T) {
	f := newFixture(t)
	f.press("u1", ActStartSurvey)

	assert.Nil(t, f.press("u1", "survey_0_7"))
	assert.Nil(t, f.press("u1", "survey_9_1"))
	s, _ := f.router.Survey().Session("u1")
	assert.Empty(t, s.Answers)
}

func TestHomeworkCreationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	blocks := f.say("u1", "我明天要交AI agent報告，大概3小時")
	require.Len(t, blocks, 1)
	card, ok := blocks[0].(ConfirmationCard)
	require.True(t, ok)
	assert.Equal(t, "AI agent 報告", card.Fields[0].Value)
	assert.Equal(t, "3 小時", card.Fields[1].Value)
	assert.Equal(t, "報告", card.Fields[2].Value)
	assert.Equal(t, "2026年10月16日(明天)", card.Fields[3].Value)
	assert.Equal(t, ActModifyHomework, card.ModifyData)
	assert.Equal(t, ActCancelHomework, card.CancelData)
	assert.Equal(t, model.FlowAwaitingConfirmation, f.router.Flow("u1").State)

	sum, err := f.store.Summarize(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, sum.Total, "drafts are not stored before confirmation")

	blocks = f.press("u1", card.ConfirmData)
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(onlyText(t, blocks), "✅ 作業已成功新增！"))
	assertEndsWithMainMenu(t, blocks)
	assert.Equal(t, model.FlowConfirmed, f.router.Flow("u1").State)

	sum, err = f.store.Summarize(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, sum.Total)
	assert.Equal(t, "AI agent 報告", sum.Tasks[0].Name)
	assert.Equal(t, "2026年10月16日(明天)", sum.Tasks[0].DueDate)
}

func TestDuplicateConfirmationSuppressed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	card := f.say("u1", "後天要完成作業系統，預計2小時")[0].(ConfirmationCard)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.press("u1", card.ConfirmData)
		}()
	}
	wg.Wait()

	sum, err := f.store.Summarize(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)

	again := f.press("u1", card.ConfirmData)
	assert.Contains(t, onlyText(t, again), "已經新增過了")

	// A fresh utterance for the same homework may be added again.
	card = f.say("u1", "後天要完成作業系統，預計2小時")[0].(ConfirmationCard)
	f.press("u1", card.ConfirmData)
	sum, err = f.store.Summarize(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
}

func TestCancelAndModify(t *testing.T) {
	f := newFixture(t)
	f.say("u1", "要交報告")

	blocks := f.press("u1", ActCancelHomework)
	assert.Equal(t, cancelText, onlyText(t, blocks))
	assertEndsWithMainMenu(t, blocks)
	assert.Equal(t, model.FlowCancelled, f.router.Flow("u1").State)

	f.say("u1", "要交報告")
	assert.Equal(t, modifyText, onlyText(t, f.press("u1", ActModifyHomework)))
	assert.Equal(t, model.FlowIdle, f.router.Flow("u1").State)
}

func TestCompletionMatchesPendingTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.AddTask(ctx, "u1", model.TaskDraft{Name: "數學作業", Type: "作業", EstimatedTime: "1 小時", DueDate: "x"})
	require.NoError(t, err)

	blocks := f.say("u1", "數學做完了")
	require.Len(t, blocks, 1)
	card, ok := blocks[0].(RecognitionCard)
	require.True(t, ok)
	assert.Equal(t, "數學作業", card.Task.Name)
	assert.Equal(t, confidenceMatched, card.Confidence)
	assert.Contains(t, card.Rationale, "「數學」")
	assert.Equal(t, ActNotThisTask, card.RejectData)

	blocks = f.press("u1", card.ConfirmData)
	require.Len(t, blocks, 1)
	sc, ok := blocks[0].(SummaryCard)
	require.True(t, ok)
	assert.Equal(t, "數學作業", sc.Latest)
	assert.Equal(t, 1, sc.Total)
	assert.Equal(t, 0, sc.Pending)
	assert.Equal(t, 1, sc.Completed)

	blocks = f.press("u1", card.ConfirmData)
	assert.Equal(t, notFoundText("數學作業"), onlyText(t, blocks))
}

func TestCompletionFallsBackToKeywordGuess(t *testing.T) {
	f := newFixture(t)

	card := f.say("u1", "我完成了 AI 的東西")[0].(RecognitionCard)
	assert.Equal(t, "AI agent 報告", card.Task.Name)
	assert.Equal(t, confidenceGuess, card.Confidence)

	card = f.say("u1", "交完了")[0].(RecognitionCard)
	assert.Equal(t, "新作業", card.Task.Name)

	blocks := f.press("u1", card.ConfirmData)
	assert.Equal(t, notFoundText("新作業"), onlyText(t, blocks))
}

func TestCreationRuleBeatsCompletionRule(t *testing.T) {
	f := newFixture(t)

	blocks := f.say("u1", "作業系統做完了")
	_, ok := blocks[0].(ConfirmationCard)
	assert.True(t, ok)
}

func TestSummaryCardLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		_, err := f.store.AddTask(ctx, "u1", model.TaskDraft{Name: n})
		require.NoError(t, err)
	}
	for _, n := range []string{"a", "b", "c"} {
		_, err := f.store.CompleteTask(ctx, "u1", n)
		require.NoError(t, err)
	}

	sc := f.press("u1", ConfirmCompletionData("d"))[0].(SummaryCard)
	assert.Equal(t, 10, sc.Total)
	assert.Equal(t, 6, sc.Pending)
	assert.Equal(t, 4, sc.Completed)
	require.Len(t, sc.PendingTasks, 5)
	assert.Equal(t, "e", sc.PendingTasks[0].Name)
	require.Len(t, sc.RecentCompleted, 3)
	assert.Equal(t, "b", sc.RecentCompleted[0].Name)
	assert.Equal(t, "d", sc.RecentCompleted[2].Name)
	assert.Equal(t, "d", sc.Latest)
}

func TestViewAllTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, noTasksText, onlyText(t, f.press("u1", ActViewAllTasks)))

	_, err := f.store.AddTask(ctx, "u1", model.TaskDraft{Name: "專題報告", Type: "報告", EstimatedTime: "5 小時", DueDate: "D1"})
	require.NoError(t, err)
	_, err = f.store.AddTask(ctx, "u1", model.TaskDraft{Name: "程式作業", Type: "作業", EstimatedTime: "3 小時", DueDate: "D2"})
	require.NoError(t, err)
	_, err = f.store.CompleteTask(ctx, "u1", "程式作業")
	require.NoError(t, err)

	want := "📄 您的所有作業：\n\n" +
		"⏳ 待完成 (1項)：\n" +
		"• 專題報告 (報告) - 5 小時 - D1\n\n" +
		"✅ 已完成 (1項)：\n" +
		"• 程式作業 (作業) - 3 小時 - D2"
	assert.Equal(t, want, onlyText(t, f.press("u1", ActViewAllTasks)))
}

func TestStaticInstructions(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, notThisTaskText, onlyText(t, f.press("u1", ActNotThisTask)))
	assert.Equal(t, continueTasksText, onlyText(t, f.press("u1", ActContinueTasks)))
	assert.Equal(t, completeTaskText, onlyText(t, f.press("u1", ActCompleteTask)))
	assert.Equal(t, addNewTaskText, onlyText(t, f.press("u1", ActAddNewTask)))
}

func TestMenus(t *testing.T) {
	f := newFixture(t)

	menu := f.press("u1", ActEmotionRecord)[0].(ChoiceMenu)
	require.Len(t, menu.Options, 4)
	assert.Equal(t, "emotion_better", menu.Options[0].Data)

	blocks := f.press("u1", menu.Options[2].Data)
	assert.Equal(t, emotionReplies["worse"], onlyText(t, blocks))
	assertEndsWithMainMenu(t, blocks)

	menu = f.press("u1", ActWeatherMenu)[0].(ChoiceMenu)
	require.Len(t, menu.Options, 4)
	blocks = f.press("u1", menu.Options[3].Data)
	assert.Equal(t, "weather:花蓮", onlyText(t, blocks))
	assertEndsWithMainMenu(t, blocks)
}

func TestUnknownActionDroppedAndLogged(t *testing.T) {
	f := newFixture(t)

	assert.Nil(t, f.press("u1", "launch_rockets"))
	warned := f.logs.FilterMessage("unrecognized action dropped").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "launch_rockets", warned[0].ContextMap()["data"])
}

func TestEchoFallback(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "您說的是：哈囉\n\n試試輸入「你好」來開始互動！", onlyText(t, f.say("u1", "哈囉")))
}

func TestStorageFailuresBecomeApologies(t *testing.T) {
	r := NewRouter(Deps{Store: brokenStore{}})
	ctx := context.Background()

	blocks := r.Handle(ctx, Postback{UserID: "u1", Data: ConfirmHomeworkData(model.TaskDraft{Name: "x"})})
	assert.Equal(t, storageErrorText, onlyText(t, blocks))
	assert.Equal(t, model.FlowIdle, r.Flow("u1").State)

	blocks = r.Handle(ctx, Postback{UserID: "u1", Data: ConfirmCompletionData("x")})
	assert.Equal(t, storageErrorText, onlyText(t, blocks))

	blocks = r.Handle(ctx, Postback{UserID: "u1", Data: ActViewAllTasks})
	assert.Equal(t, storageErrorText, onlyText(t, blocks))

	card := r.Handle(ctx, Message{UserID: "u1", Text: "作業完成"})[0]
	_, isConfirm := card.(ConfirmationCard)
	assert.True(t, isConfirm)

	rec := r.Handle(ctx, Message{UserID: "u1", Text: "做完了"})[0].(RecognitionCard)
	assert.Equal(t, "新作業", rec.Task.Name)
}

func TestUsersAreIsolated(t *testing.T) {
	f := newFixture(t)

	f.press("a", ActStartSurvey)
	assert.Empty(t, f.say("b", "幾天"))
	assert.True(t, f.router.Survey().Active("a"))
	assert.False(t, f.router.Survey().Active("b"))
}
