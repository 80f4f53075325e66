package game

import "testing"

func TestNextStage(t *testing.T) {
	recording := func(stage Stage, created, count int) *Project {
		return &Project{Type: ProjectEP, Stage: stage, SongsCreated: created, SongCount: count}
	}
	tour := func(revealed, planned int) *Project {
		return &Project{Type: ProjectTour, Stage: StageProduction, Metadata: ProjectMetadata{CitiesPlanned: planned, CitiesRevealed: revealed}}
	}
	tests := []struct {
		name    string
		project *Project
		elapsed int
		want    Stage
	}{
		{"planning elapsed 0", recording(StagePlanning, 0, 3), 0, StagePlanning},
		{"planning elapsed 1", recording(StagePlanning, 0, 3), 1, StageProduction},
		{"songs done elapsed 1", recording(StageProduction, 3, 3), 1, StageProduction},
		{"songs done elapsed 2", recording(StageProduction, 3, 3), 2, StageMarketing},
		{"songs done elapsed 3", recording(StageProduction, 3, 3), 3, StageMarketing},
		{"songs missing elapsed 2", recording(StageProduction, 1, 3), 2, StageProduction},
		{"songs missing elapsed 3", recording(StageProduction, 2, 3), 3, StageProduction},
		{"songs missing hits cap", recording(StageProduction, 2, 3), 4, StageMarketing},
		{"marketing elapsed 2", recording(StageMarketing, 3, 3), 2, StageMarketing},
		{"marketing elapsed 3", recording(StageMarketing, 3, 3), 3, StageReleased},
		{"released stays", recording(StageReleased, 3, 3), 9, StageReleased},
		{"tour cities pending", tour(2, 3), 3, StageProduction},
		{"tour all cities", tour(3, 3), 4, StageRecorded},
		{"tour all cities too early", tour(1, 1), 1, StageProduction},
		{"tour without cities", tour(0, 0), 5, StageProduction},
	}
	for _, tc := range tests {
		if got := nextStage(tc.project, tc.elapsed); got != tc.want {
			t.Fatalf("%s: next stage = %s want %s", tc.name, got, tc.want)
		}
	}
}
