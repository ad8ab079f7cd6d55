package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, manifest, history row에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5
//   Load  Universe  Features  Gates  Scoring  Report

// Stage represents a pipeline stage
type Stage string

const (
	// StageLoad S0: OHLCV 파일 로드 및 품질 스냅샷
	// 위치: internal/s0_data/
	StageLoad Stage = "S0_LOAD"

	// StageUniverse S1: watchlist와 OHLCV 파일 교집합
	// 위치: internal/s1_universe/
	StageUniverse Stage = "S1_UNIVERSE"

	// StageFeatures S2: as-of 기준 trailing window 피처 계산
	// 위치: internal/s2_features/
	StageFeatures Stage = "S2_FEATURES"

	// StageGates S3: eligibility gate 평가 (collect all)
	// 위치: internal/s3_gates/
	StageGates Stage = "S3_GATES"

	// StageScoring S4: monitor score, risk flag, ranking
	// 위치: internal/s4_scoring/
	StageScoring Stage = "S4_SCORING"

	// StageReport S5: CSV/markdown/manifest 산출물
	// 위치: internal/report/
	StageReport Stage = "S5_REPORT"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageLoad:
		return "S0"
	case StageUniverse:
		return "S1"
	case StageFeatures:
		return "S2"
	case StageGates:
		return "S3"
	case StageScoring:
		return "S4"
	case StageReport:
		return "S5"
	default:
		return "UNKNOWN"
	}
}

// Description returns a human readable description of the stage
func (s Stage) Description() string {
	switch s {
	case StageLoad:
		return "OHLCV load and data quality"
	case StageUniverse:
		return "watchlist universe"
	case StageFeatures:
		return "trailing-window features"
	case StageGates:
		return "eligibility gates"
	case StageScoring:
		return "monitor score and risk flags"
	case StageReport:
		return "artifacts"
	default:
		return "unknown"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageLoad,
		StageUniverse,
		StageFeatures,
		StageGates,
		StageScoring,
		StageReport,
	}
}
