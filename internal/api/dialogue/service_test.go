package dialogue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Kmcx/histolocal/app/observability/metrics"
	"github.com/Kmcx/histolocal/internal/api/gazetteer"
	"github.com/Kmcx/histolocal/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	m.Run()
}

// MockResolver is a mock implementation of locations.Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, prompt string) ([]string, []string) {
	args := m.Called(ctx, prompt)
	var exact, fuzzy []string
	if v := args.Get(0); v != nil {
		exact = v.([]string)
	}
	if v := args.Get(1); v != nil {
		fuzzy = v.([]string)
	}
	return exact, fuzzy
}

// MockAssembler is a mock implementation of itinerary.Service
type MockAssembler struct {
	mock.Mock
}

func (m *MockAssembler) Assemble(ctx context.Context, locations []string, category, travelDate string) (*types.ItineraryResult, error) {
	args := m.Called(ctx, locations, category, travelDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ItineraryResult), args.Error(1)
}

func testGazetteer() *gazetteer.Gazetteer {
	return gazetteer.New([]types.PlaceEntry{
		{
			Name:        "Konak",
			Coordinates: [2]float64{38.4189, 27.1287},
			Categories: map[string][]types.SubPlace{
				"historical sites": {{Name: "Clock Tower", Lat: 38.4192, Lng: 27.1287}},
				"city life":        {{Name: "Kemeralti Bazaar", Lat: 38.4180, Lng: 27.1322}},
			},
		},
		{
			Name:        "Çeşme",
			Coordinates: [2]float64{38.3230, 26.3065},
			Categories: map[string][]types.SubPlace{
				"beaches": {{Name: "Ilica Beach", Lat: 38.3126, Lng: 26.3926}},
			},
		},
	})
}

func setupServiceTest() (*ServiceImpl, *MockResolver, *MockAssembler) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := new(MockResolver)
	assembler := new(MockAssembler)
	return NewServiceImpl(resolver, assembler, testGazetteer(), logger), resolver, assembler
}

func TestServiceImpl_Turn_InitAndReset(t *testing.T) {
	ctx := context.Background()

	t.Run("nil context greets and hands out a fresh context", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		resp, err := service.Turn(ctx, "new trip", nil)
		require.NoError(t, err)
		assert.Equal(t, greetingReply, resp.Response)
		require.NotNil(t, resp.Awaiting)
		assert.Equal(t, types.AwaitingLocations, *resp.Awaiting)
		assert.Equal(t, types.FreshContext(), resp.Context)
	})

	t.Run("empty stage greets regardless of prompt", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		resp, err := service.Turn(ctx, "anything at all", &types.ConversationContext{})
		require.NoError(t, err)
		assert.Equal(t, greetingReply, resp.Response)
	})

	t.Run("reset phrase discards any prior context", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		prior := &types.ConversationContext{
			Stage:      types.StageAwaitingDate,
			Locations:  []string{"Konak"},
			Category:   "beaches",
			TravelDate: "15 April 2025",
		}
		resp, err := service.Turn(ctx, "let's plan a new tour", prior)
		require.NoError(t, err)
		assert.Equal(t, greetingReply, resp.Response)
		assert.Equal(t, types.ConversationContext{
			Stage:     types.StageAwaitingLocations,
			Locations: []string{},
			Category:  "",
		}, resp.Context)
	})

	t.Run("unknown stage re-initializes", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		resp, err := service.Turn(ctx, "hello", &types.ConversationContext{Stage: "awaiting_mood"})
		require.NoError(t, err)
		assert.Equal(t, greetingReply, resp.Response)
		assert.Equal(t, types.FreshContext(), resp.Context)
	})
}

func TestServiceImpl_Turn_AwaitingLocations(t *testing.T) {
	ctx := context.Background()
	prior := types.FreshContext()

	t.Run("no match re-prompts without mutating the context", func(t *testing.T) {
		service, resolver, _ := setupServiceTest()
		resolver.On("Resolve", mock.Anything, "somewhere sunny").Return(nil, nil).Once()

		resp, err := service.Turn(ctx, "somewhere sunny", &prior)
		require.NoError(t, err)
		assert.Equal(t, locationsReprompt, resp.Response)
		assert.Equal(t, types.AwaitingLocations, *resp.Awaiting)
		assert.Equal(t, prior, resp.Context)
	})

	t.Run("exact matches commit and advance to category", func(t *testing.T) {
		service, resolver, _ := setupServiceTest()
		resolver.On("Resolve", mock.Anything, "I want to see Konak and Çeşme").
			Return([]string{"Konak", "Çeşme"}, []string{"Foça"}).Once()

		resp, err := service.Turn(ctx, "I want to see Konak and Çeşme", &prior)
		require.NoError(t, err)
		assert.Equal(t, categoryPrompt, resp.Response)
		assert.Equal(t, types.AwaitingCategory, *resp.Awaiting)
		assert.Equal(t, []string{"Konak", "Çeşme"}, resp.Context.Locations)
		assert.Equal(t, types.StageAwaitingCategory, resp.Context.Stage)
	})
}

func TestServiceImpl_Turn_AwaitingCategory(t *testing.T) {
	ctx := context.Background()
	prior := types.ConversationContext{
		Stage:     types.StageAwaitingCategory,
		Locations: []string{"Konak"},
	}

	t.Run("unrecognized category leaves stage and slot unchanged", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		resp, err := service.Turn(ctx, "something fun", &prior)
		require.NoError(t, err)
		assert.Equal(t, categoryReprompt, resp.Response)
		assert.Equal(t, types.StageAwaitingCategory, resp.Context.Stage)
		assert.Empty(t, resp.Context.Category)
	})

	t.Run("matched tokens are sorted, deduplicated and comma-joined", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		resp, err := service.Turn(ctx, "historical sites and beaches, beaches", &prior)
		require.NoError(t, err)
		assert.Equal(t, datePrompt, resp.Response)
		assert.Equal(t, types.AwaitingDate, *resp.Awaiting)
		assert.Equal(t, "beaches, historical sites", resp.Context.Category)
		assert.Equal(t, types.StageAwaitingDate, resp.Context.Stage)
	})
}

func TestServiceImpl_Turn_AwaitingDate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing locations regress to the locations stage", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		prior := types.ConversationContext{Stage: types.StageAwaitingDate, Category: "beaches"}
		resp, err := service.Turn(ctx, "15 April", &prior)
		require.NoError(t, err)
		assert.Equal(t, startOverReply, resp.Response)
		assert.Equal(t, types.StageAwaitingLocations, resp.Context.Stage)
		// the category slot survives the regression
		assert.Equal(t, "beaches", resp.Context.Category)
	})

	t.Run("missing category regresses to the category stage", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		prior := types.ConversationContext{Stage: types.StageAwaitingDate, Locations: []string{"Konak"}}
		resp, err := service.Turn(ctx, "15 April", &prior)
		require.NoError(t, err)
		assert.Equal(t, categoryReprompt, resp.Response)
		assert.Equal(t, types.StageAwaitingCategory, resp.Context.Stage)
		assert.Equal(t, []string{"Konak"}, resp.Context.Locations)
	})

	t.Run("unparseable date re-prompts without mutation", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		prior := types.ConversationContext{
			Stage:     types.StageAwaitingDate,
			Locations: []string{"Konak"},
			Category:  "beaches",
		}
		resp, err := service.Turn(ctx, "sometime next week", &prior)
		require.NoError(t, err)
		assert.Equal(t, dateReprompt, resp.Response)
		assert.Equal(t, types.StageAwaitingDate, resp.Context.Stage)
		assert.Empty(t, resp.Context.TravelDate)
	})

	t.Run("a valid date completes and assembles within the same turn", func(t *testing.T) {
		service, _, assembler := setupServiceTest()
		prior := types.ConversationContext{
			Stage:     types.StageAwaitingDate,
			Locations: []string{"Konak", "Çeşme"},
			Category:  "historical sites",
		}
		assembler.On("Assemble", mock.Anything, []string{"Konak", "Çeşme"}, "historical sites", "15 April 2025").
			Return(&types.ItineraryResult{Summary: "Here is your itinerary: ..."}, nil).Once()

		resp, err := service.Turn(ctx, "15 April", &prior)
		require.NoError(t, err)
		assert.Nil(t, resp.Awaiting)
		assert.Equal(t, "Here is your itinerary: ...", resp.Response)
		assert.Equal(t, types.StageCompleted, resp.Context.Stage)
		assert.Equal(t, "15 April 2025", resp.Context.TravelDate)
		assembler.AssertExpectations(t)
	})
}

func TestServiceImpl_Turn_Completed(t *testing.T) {
	ctx := context.Background()

	t.Run("lost locations restart the conversation", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		prior := types.ConversationContext{Stage: types.StageCompleted, Category: "beaches", TravelDate: "15 April 2025"}
		resp, err := service.Turn(ctx, "show me", &prior)
		require.NoError(t, err)
		assert.Equal(t, lostLocationsReply, resp.Response)
		assert.Equal(t, types.FreshContext(), resp.Context)
	})

	t.Run("lost category regresses to the category stage", func(t *testing.T) {
		service, _, _ := setupServiceTest()
		prior := types.ConversationContext{Stage: types.StageCompleted, Locations: []string{"Konak"}, TravelDate: "15 April 2025"}
		resp, err := service.Turn(ctx, "show me", &prior)
		require.NoError(t, err)
		assert.Equal(t, categoryReprompt, resp.Response)
		assert.Equal(t, types.StageAwaitingCategory, resp.Context.Stage)
	})

	t.Run("re-sending a completed context re-assembles the itinerary", func(t *testing.T) {
		service, _, assembler := setupServiceTest()
		prior := types.ConversationContext{
			Stage:      types.StageCompleted,
			Locations:  []string{"Konak"},
			Category:   "city life",
			TravelDate: "15 April 2025",
		}
		assembler.On("Assemble", mock.Anything, []string{"Konak"}, "city life", "15 April 2025").
			Return(&types.ItineraryResult{Summary: "again"}, nil).Once()

		resp, err := service.Turn(ctx, "show me", &prior)
		require.NoError(t, err)
		assert.Equal(t, "again", resp.Response)
		assert.Nil(t, resp.Awaiting)
	})

	t.Run("assembler failure surfaces as an error for the handler", func(t *testing.T) {
		service, _, assembler := setupServiceTest()
		prior := types.ConversationContext{
			Stage:      types.StageCompleted,
			Locations:  []string{"Konak"},
			Category:   "city life",
			TravelDate: "15 April 2025",
		}
		assembler.On("Assemble", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("corpus lookup failed")).Once()

		_, err := service.Turn(ctx, "show me", &prior)
		require.Error(t, err)
	})
}
