package dialogue

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/mood-assistant/internal/extract"
	"github.com/nhle/mood-assistant/internal/keyed"
	"github.com/nhle/mood-assistant/internal/model"
	"github.com/nhle/mood-assistant/internal/store"
	"github.com/nhle/mood-assistant/internal/survey"
)

// DefaultCity is used for a bare "天氣" request.
const DefaultCity = "臺北"

var (
	creationKeywords   = []string{"要交", "要完成", "需要做", "作業", "報告", "小時"}
	completionKeywords = []string{"完成了", "完成", "做完了", "交完了"}
)

// WeatherService describes current conditions for a city as user-facing
// text. Failures are reported inside the text.
type WeatherService interface {
	Describe(ctx context.Context, city string) string
}

// Deps are the collaborators of a Router. Only Store is required.
type Deps struct {
	Store     store.Store
	Survey    *survey.Engine
	Extractor *extract.Extractor
	Weather   WeatherService
	Flows     keyed.Store[model.DraftFlow]
	Logger    *zap.Logger
}

// Router turns inbound events into response blocks.
type Router struct {
	store     store.Store
	survey    *survey.Engine
	extractor *extract.Extractor
	weather   WeatherService
	flows     keyed.Store[model.DraftFlow]
	log       *zap.Logger
}

// NewRouter creates a Router, filling unset optional dependencies with
// in-memory defaults.
func NewRouter(d Deps) *Router {
	r := &Router{
		store:     d.Store,
		survey:    d.Survey,
		extractor: d.Extractor,
		weather:   d.Weather,
		flows:     d.Flows,
		log:       d.Logger,
	}
	if r.survey == nil {
		r.survey = survey.NewEngine()
	}
	if r.extractor == nil {
		r.extractor = extract.New()
	}
	if r.flows == nil {
		r.flows = keyed.NewMap[model.DraftFlow]()
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// Survey exposes the router's survey engine.
func (r *Router) Survey() *survey.Engine { return r.survey }

// Flow returns the homework confirmation state of userID.
func (r *Router) Flow(userID string) model.DraftFlow {
	f, _ := r.flows.Get(userID)
	return f
}

// Handle processes one event. A nil result means nothing should be sent.
func (r *Router) Handle(ctx context.Context, ev Event) []Block {
	switch e := ev.(type) {
	case Message:
		return r.handleMessage(ctx, e)
	case Postback:
		return r.handlePostback(ctx, e)
	case Follow:
		r.log.Info("user followed", zap.String("user", e.UserID))
		return greeting()
	case nil:
		return nil
	default:
		r.log.Warn("unsupported event", zap.String("user", ev.User()))
		return nil
	}
}

func (r *Router) handleMessage(ctx context.Context, m Message) []Block {
	text := strings.TrimSpace(m.Text)
	log := r.log.With(zap.String("user", m.UserID))

	switch {
	case text == "你好":
		log.Debug("greeting")
		return greeting()

	case strings.HasSuffix(text, "天氣"):
		city := strings.TrimSpace(strings.ReplaceAll(text, "天氣", ""))
		if city == "" {
			city = DefaultCity
		}
		log.Debug("weather request", zap.String("city", city))
		return []Block{Text{Text: r.describeWeather(ctx, city)}}

	case survey.IsLabel(text):
		value, _ := survey.LabelValue(text)
		out, err := r.survey.Answer(m.UserID, value)
		if errors.Is(err, survey.ErrNoSession) {
			log.Debug("survey label without a session dropped")
			return nil
		}
		if err != nil {
			log.Error("survey answer failed", zap.Error(err))
			return nil
		}
		return surveyBlocks(out)

	case containsAny(text, creationKeywords):
		draft := r.extractor.Extract(text)
		r.flows.Put(m.UserID, model.DraftFlow{State: model.FlowAwaitingConfirmation, Draft: draft})
		log.Info("task draft extracted",
			zap.String("name", draft.Name),
			zap.String("type", draft.Type),
			zap.String("estimated_time", draft.EstimatedTime),
			zap.String("due_date", draft.DueDate))
		return []Block{confirmationCard(draft)}

	case containsAny(text, completionKeywords):
		rec := r.recognize(ctx, m.UserID, text)
		log.Info("completion recognized",
			zap.String("name", rec.task.Name),
			zap.String("confidence", rec.confidence))
		return []Block{rec.card()}

	default:
		return []Block{Text{Text: echoText(text)}}
	}
}

func (r *Router) recognize(ctx context.Context, userID, text string) recognition {
	sum, err := r.store.Summarize(ctx, userID)
	if err != nil {
		r.log.Error("listing tasks for recognition", zap.String("user", userID), zap.Error(err))
		return guessCompletion(text)
	}
	if rec, ok := matchPending(text, sum.PendingTasks()); ok {
		return rec
	}
	return guessCompletion(text)
}

func (r *Router) handlePostback(ctx context.Context, p Postback) []Block {
	log := r.log.With(zap.String("user", p.UserID), zap.String("data", p.Data))

	act, ok := ParseAction(p.Data)
	if !ok {
		log.Warn("unrecognized action dropped")
		return nil
	}
	log.Debug("postback")

	switch act.Kind {
	case ActionStatic:
		return r.handleStatic(ctx, p.UserID, act.Static)

	case ActionSurveyAnswer:
		out, err := r.survey.AnswerQuestion(p.UserID, act.Question, act.Value)
		if err != nil {
			log.Warn("survey answer rejected", zap.Error(err))
			return nil
		}
		if out.Stale {
			log.Info("stale survey answer ignored", zap.Int("question", act.Question))
		}
		return surveyBlocks(out)

	case ActionConfirmHomework:
		return r.confirmHomework(ctx, p.UserID, act.Draft)

	case ActionConfirmCompletion:
		return r.confirmCompletion(ctx, p.UserID, act.TaskName)

	case ActionEmotion:
		return withMenu(emotionReplies[act.Emotion])

	case ActionWeather:
		return withMenu(r.describeWeather(ctx, act.City))
	}

	return nil
}

func (r *Router) handleStatic(ctx context.Context, userID, action string) []Block {
	switch action {
	case ActStartSurvey:
		return []Block{progressCard(r.survey.Start(userID))}
	case ActEmotionRecord:
		return []Block{emotionMenu()}
	case ActWeatherMenu:
		return []Block{weatherMenu()}
	case ActModifyHomework:
		r.flows.Delete(userID)
		return []Block{Text{Text: modifyText}}
	case ActCancelHomework:
		r.flows.Put(userID, model.DraftFlow{State: model.FlowCancelled})
		return withMenu(cancelText)
	case ActNotThisTask:
		return []Block{Text{Text: notThisTaskText}}
	case ActContinueTasks:
		return []Block{Text{Text: continueTasksText}}
	case ActCompleteTask:
		return []Block{Text{Text: completeTaskText}}
	case ActAddNewTask:
		return []Block{Text{Text: addNewTaskText}}
	case ActViewAllTasks:
		sum, err := r.store.Summarize(ctx, userID)
		if err != nil {
			r.log.Error("listing tasks", zap.String("user", userID), zap.Error(err))
			return []Block{Text{Text: storageErrorText}}
		}
		return []Block{Text{Text: listingText(sum)}}
	}
	return nil
}

// confirmHomework stores the confirmed draft. A repeated confirmation of
// the draft that was just stored is answered without adding it again.
func (r *Router) confirmHomework(ctx context.Context, userID string, draft model.TaskDraft) []Block {
	var blocks []Block
	r.flows.Update(userID, func(cur model.DraftFlow, ok bool) (model.DraftFlow, bool) {
		if ok && cur.State == model.FlowConfirmed && cur.Draft == draft {
			r.log.Info("duplicate confirmation suppressed",
				zap.String("user", userID), zap.String("name", draft.Name))
			blocks = []Block{Text{Text: alreadyAddedText(draft)}}
			return cur, true
		}

		task, err := r.store.AddTask(ctx, userID, draft)
		if err != nil {
			r.log.Error("adding task", zap.String("user", userID), zap.Error(err))
			blocks = []Block{Text{Text: storageErrorText}}
			return cur, ok
		}

		r.log.Info("task added",
			zap.String("user", userID),
			zap.Int("id", task.ID),
			zap.String("name", task.Name))
		blocks = withMenu(addedText(draft))
		return model.DraftFlow{State: model.FlowConfirmed, Draft: draft}, true
	})
	return blocks
}

func (r *Router) confirmCompletion(ctx context.Context, userID, name string) []Block {
	task, err := r.store.CompleteTask(ctx, userID, name)
	if errors.Is(err, store.ErrNotFound) {
		return []Block{Text{Text: notFoundText(name)}}
	}
	if err != nil {
		r.log.Error("completing task", zap.String("user", userID), zap.Error(err))
		return []Block{Text{Text: storageErrorText}}
	}
	r.log.Info("task completed",
		zap.String("user", userID),
		zap.Int("id", task.ID),
		zap.String("name", task.Name))

	sum, err := r.store.Summarize(ctx, userID)
	if err != nil {
		r.log.Error("summarizing tasks", zap.String("user", userID), zap.Error(err))
		return []Block{Text{Text: storageErrorText}}
	}
	return []Block{summaryCard(sum)}
}

func (r *Router) describeWeather(ctx context.Context, city string) string {
	if r.weather == nil {
		return weatherUnavailableText
	}
	return r.weather.Describe(ctx, city)
}

func surveyBlocks(out survey.Outcome) []Block {
	switch {
	case out.Report != nil:
		return withMenu(out.Report.Text)
	case out.Next != nil:
		return []Block{progressCard(*out.Next)}
	default:
		return nil
	}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
