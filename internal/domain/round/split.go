package round

// Adjustment は特定の出席者に対する個別調整額を表す
type Adjustment struct {
	AttendanceID string
	Amount       int
}

// SplitResult は割り勘計算の結果を表す
type SplitResult struct {
	TotalAmount int
	// PerPerson は調整対象外の出席者1人あたりの負担額
	PerPerson int
	// AmountByAttendance は出席IDごとの最終負担額
	AmountByAttendance map[string]int
}

// ComputeSplit は合計金額を実出席者で割り勘にする
// 個別調整額を除いた残額を残りの人数で切り上げ除算し、幹事が取りはぐれ
// ないようにする。端数の余りは再配分せず全体で吸収する。
func ComputeSplit(totalAmount int, actualAttendanceIDs []string, adjustments []Adjustment) (*SplitResult, error) {
	if totalAmount <= 0 {
		return nil, ErrInvalidTotalAmount
	}
	if len(actualAttendanceIDs) == 0 {
		return nil, ErrNoActualAttendance
	}

	actual := make(map[string]bool, len(actualAttendanceIDs))
	for _, id := range actualAttendanceIDs {
		actual[id] = true
	}

	// 実出席者以外や負値の調整は黙って無視する
	adjusted := make(map[string]int, len(adjustments))
	adjustedSum := 0
	for _, adj := range adjustments {
		if !actual[adj.AttendanceID] || adj.Amount < 0 {
			continue
		}
		if prev, ok := adjusted[adj.AttendanceID]; ok {
			adjustedSum -= prev
		}
		adjusted[adj.AttendanceID] = adj.Amount
		adjustedSum += adj.Amount
	}

	remainingCount := len(actualAttendanceIDs) - len(adjusted)
	remainingTotal := totalAmount - adjustedSum

	if remainingTotal < 0 {
		return nil, ErrInvalidAdjustments
	}
	if remainingCount == 0 && remainingTotal != 0 {
		return nil, ErrInvalidAdjustments
	}

	perPerson := 0
	if remainingCount > 0 {
		perPerson = ceilDivide(remainingTotal, remainingCount)
	}

	amounts := make(map[string]int, len(actualAttendanceIDs))
	for _, id := range actualAttendanceIDs {
		if amount, ok := adjusted[id]; ok {
			amounts[id] = amount
		} else {
			amounts[id] = perPerson
		}
	}

	return &SplitResult{
		TotalAmount:        totalAmount,
		PerPerson:          perPerson,
		AmountByAttendance: amounts,
	}, nil
}

func ceilDivide(total, count int) int {
	return (total + count - 1) / count
}
