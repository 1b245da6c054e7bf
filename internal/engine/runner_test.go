package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/tsct-runner/internal/artifact"
	"github.com/daryltucker/tsct-runner/internal/config"
	"github.com/daryltucker/tsct-runner/internal/model"
	"github.com/daryltucker/tsct-runner/internal/params"
)

type mockSearch struct {
	res   SearchResult
	err   error
	calls int

	lastTrain string
	lastTest  string
	lastCfg   map[string]interface{}
}

func (m *mockSearch) Search(trainPath, testPath string, cfg map[string]interface{}) (SearchResult, error) {
	m.calls++
	m.lastTrain = trainPath
	m.lastTest = testPath
	m.lastCfg = cfg
	return m.res, m.err
}

type mockEval struct {
	paramsMetric float64
	modelMetric  float64
	err          error

	scoreParamsCalls int
	scoreModelCalls  int
	lastSet          params.Set
	lastModelPath    string
	lastTestPath     string
}

func (m *mockEval) ScoreParams(testPath string, cfg map[string]interface{}, set params.Set) (float64, error) {
	m.scoreParamsCalls++
	m.lastTestPath = testPath
	m.lastSet = set
	return m.paramsMetric, m.err
}

func (m *mockEval) ScoreModel(modelPath, testPath string, cfg map[string]interface{}, set params.Set) (float64, error) {
	m.scoreModelCalls++
	m.lastModelPath = modelPath
	m.lastTestPath = testPath
	m.lastSet = set
	return m.modelMetric, m.err
}

func searchParams() params.Set {
	return params.Set{
		"lr":             0.01,
		"dropout_ff":     0.2,
		"fourie_mode":    "lin",
		"embedding_mode": "dense",
		"max_seq_len":    128.0,
		"num_layers":     4.0,
		"hidden_dim":     64.0,
	}
}

func newTestRunner(search SearchEngine, eval Evaluator) *Runner {
	return NewRunner(config.DefaultConfig(), search, eval, nil)
}

func TestValidateModeGating(t *testing.T) {
	cases := []struct {
		name  string
		spec  RunSpec
		field string
	}{
		{
			name:  "train without train path",
			spec:  RunSpec{Mode: model.ModeTrain, TestPath: "t.csv", OutputFolder: "out"},
			field: "train_path",
		},
		{
			name:  "test_params without params path",
			spec:  RunSpec{Mode: model.ModeTestParams, TestPath: "t.csv", OutputFolder: "out"},
			field: "params_path",
		},
		{
			name:  "test_model without params path",
			spec:  RunSpec{Mode: model.ModeTestModel, TestPath: "t.csv", OutputFolder: "out", ModelPath: "m.pt"},
			field: "params_path",
		},
		{
			name:  "test_model without model path",
			spec:  RunSpec{Mode: model.ModeTestModel, TestPath: "t.csv", OutputFolder: "out", ParamsPath: "p.xlsx"},
			field: "model_path",
		},
		{
			name:  "unknown mode",
			spec:  RunSpec{Mode: "predict", TestPath: "t.csv", OutputFolder: "out"},
			field: "mode",
		},
		{
			name:  "missing test path",
			spec:  RunSpec{Mode: model.ModeTrain, TrainPath: "tr.csv", OutputFolder: "out"},
			field: "test_path",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			tc.spec.OutputFolder = out

			search := &mockSearch{}
			eval := &mockEval{}
			r := newTestRunner(search, eval)

			_, err := r.Execute(tc.spec)

			var cfgErr *model.ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tc.field, cfgErr.Field)

			// Fail fast: no collaborator touched, no file written.
			assert.Zero(t, search.calls)
			assert.Zero(t, eval.scoreParamsCalls)
			assert.Zero(t, eval.scoreModelCalls)
			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr), "validation must not create the output folder")
		})
	}
}

func TestTrainPersistsBothArtifacts(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	search := &mockSearch{res: SearchResult{
		Params: searchParams(),
		Metric: 0.873,
		Model:  []byte("weights"),
	}}
	eval := &mockEval{paramsMetric: 0.861}
	r := newTestRunner(search, eval)

	metric, err := r.Execute(RunSpec{
		Mode:         model.ModeTrain,
		TrainPath:    "train.csv",
		TestPath:     "test.csv",
		OutputFolder: out,
	})
	require.NoError(t, err)

	// The reported metric is a fresh evaluation of the coerced set, not the
	// search's own score. The search score only names the record file.
	assert.Equal(t, 0.861, metric)
	assert.Equal(t, 1, search.calls)
	assert.Equal(t, 1, eval.scoreParamsCalls)

	modelData, err := os.ReadFile(filepath.Join(out, artifact.ModelFileName))
	require.NoError(t, err)
	assert.Equal(t, []byte("weights"), modelData)

	recPath := filepath.Join(out, "0.873.xlsx")
	loaded, err := params.Load(recPath)
	require.NoError(t, err)
	assert.Equal(t, 0.01, loaded["lr"])
	assert.Equal(t, 4.0, loaded["num_layers"])

	// Exactly one record and one artifact on disk.
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var xlsxCount, modelCount int
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".xlsx":
			xlsxCount++
		case ".pt":
			modelCount++
		}
	}
	assert.Equal(t, 1, xlsxCount)
	assert.Equal(t, 1, modelCount)
}

func TestTrainEvaluatesCoercedSet(t *testing.T) {
	// The evaluator must see the post-round-trip values: integral parameters
	// as ints, declared floats/categoricals as stored.
	out := filepath.Join(t.TempDir(), "out")

	search := &mockSearch{res: SearchResult{
		Params: searchParams(),
		Metric: 0.873,
		Model:  []byte("w"),
	}}
	eval := &mockEval{paramsMetric: 0.861}
	r := newTestRunner(search, eval)

	_, err := r.Execute(RunSpec{
		Mode:         model.ModeTrain,
		TrainPath:    "train.csv",
		TestPath:     "test.csv",
		OutputFolder: out,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, eval.lastSet["num_layers"])
	assert.Equal(t, 64, eval.lastSet["hidden_dim"])
	assert.Equal(t, 0.01, eval.lastSet["lr"])
	assert.Equal(t, "lin", eval.lastSet["fourie_mode"])
	assert.Equal(t, float64(128), eval.lastSet["max_seq_len"])
}

func TestTrainHonorsExplicitParamsPath(t *testing.T) {
	tmp := t.TempDir()
	out := filepath.Join(tmp, "out")
	explicit := filepath.Join(tmp, "chosen.xlsx")

	search := &mockSearch{res: SearchResult{
		Params: searchParams(),
		Metric: 0.873,
		Model:  []byte("w"),
	}}
	eval := &mockEval{paramsMetric: 0.861}
	r := newTestRunner(search, eval)

	_, err := r.Execute(RunSpec{
		Mode:         model.ModeTrain,
		TrainPath:    "train.csv",
		TestPath:     "test.csv",
		OutputFolder: out,
		ParamsPath:   explicit,
	})
	require.NoError(t, err)

	_, err = os.Stat(explicit)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "0.873.xlsx"))
	assert.True(t, os.IsNotExist(err), "no derived record when an explicit path is given")
}

func TestTestParamsSkipsSearchAndArtifacts(t *testing.T) {
	tmp := t.TempDir()
	out := filepath.Join(tmp, "out")
	recPath := filepath.Join(tmp, "params.xlsx")
	require.NoError(t, params.Save(recPath, searchParams()))

	search := &mockSearch{}
	eval := &mockEval{paramsMetric: 0.77}
	r := newTestRunner(search, eval)

	metric, err := r.Execute(RunSpec{
		Mode:         model.ModeTestParams,
		TestPath:     "test.csv",
		OutputFolder: out,
		ParamsPath:   recPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.77, metric)
	assert.Zero(t, search.calls)
	assert.Equal(t, 1, eval.scoreParamsCalls)
	assert.Zero(t, eval.scoreModelCalls)
	assert.Equal(t, 4, eval.lastSet["num_layers"])

	_, err = os.Stat(filepath.Join(out, artifact.ModelFileName))
	assert.True(t, os.IsNotExist(err), "test_params must not write a model artifact")
}

func TestTestModelScoresStoredModel(t *testing.T) {
	tmp := t.TempDir()
	out := filepath.Join(tmp, "out")
	recPath := filepath.Join(tmp, "params.xlsx")
	require.NoError(t, params.Save(recPath, searchParams()))

	search := &mockSearch{}
	eval := &mockEval{modelMetric: 0.81}
	r := newTestRunner(search, eval)

	metric, err := r.Execute(RunSpec{
		Mode:         model.ModeTestModel,
		TestPath:     "test.csv",
		OutputFolder: out,
		ParamsPath:   recPath,
		ModelPath:    filepath.Join(tmp, "elsewhere", "TSCT_model.pt"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0.81, metric)
	assert.Zero(t, search.calls)
	assert.Zero(t, eval.scoreParamsCalls)
	assert.Equal(t, 1, eval.scoreModelCalls)
	assert.Equal(t, filepath.Join(tmp, "elsewhere", "TSCT_model.pt"), eval.lastModelPath)
	assert.Equal(t, 64, eval.lastSet["hidden_dim"])

	_, err = os.Stat(filepath.Join(out, artifact.ModelFileName))
	assert.True(t, os.IsNotExist(err), "test_model must not write a model artifact")
}

func TestSearchFailurePropagates(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	boom := errors.New("search exploded")
	search := &mockSearch{err: boom}
	eval := &mockEval{}
	r := newTestRunner(search, eval)

	_, err := r.Execute(RunSpec{
		Mode:         model.ModeTrain,
		TrainPath:    "train.csv",
		TestPath:     "test.csv",
		OutputFolder: out,
	})

	require.ErrorIs(t, err, boom)
	assert.Zero(t, eval.scoreParamsCalls)
}

func TestMalformedRecordIsFatal(t *testing.T) {
	tmp := t.TempDir()
	out := filepath.Join(tmp, "out")
	recPath := filepath.Join(tmp, "garbage.xlsx")
	require.NoError(t, os.WriteFile(recPath, []byte("not an xlsx"), 0644))

	eval := &mockEval{}
	r := newTestRunner(&mockSearch{}, eval)

	_, err := r.Execute(RunSpec{
		Mode:         model.ModeTestParams,
		TestPath:     "test.csv",
		OutputFolder: out,
		ParamsPath:   recPath,
	})

	var recErr *model.MalformedRecordError
	require.True(t, errors.As(err, &recErr))
	assert.Zero(t, eval.scoreParamsCalls)
}

func TestTrainWritesRunSummary(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	search := &mockSearch{res: SearchResult{
		Params: searchParams(),
		Metric: 0.873,
		Model:  []byte("w"),
	}}
	r := newTestRunner(search, &mockEval{paramsMetric: 0.861})

	_, err := r.Execute(RunSpec{
		Mode:         model.ModeTrain,
		TrainPath:    "train.csv",
		TestPath:     "test.csv",
		OutputFolder: out,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, config.DefaultConfig().SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mode":"train"`)
	assert.Contains(t, string(data), `"metric":0.861`)
}
