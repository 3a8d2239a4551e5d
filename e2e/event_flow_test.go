package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request("GET", "/api/v1/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

// createTestEvent はイベントを作成し、公開ID・幹事トークン・候補日IDを返す
func createTestEvent(t *testing.T, server *TestServer) (publicID, adminToken string, candidateIDs []string) {
	t.Helper()

	rec := server.Request("POST", "/api/v1/events", map[string]interface{}{
		"name": "新年会",
		"candidates": []string{
			time.Date(2026, 1, 9, 19, 0, 0, 0, time.UTC).Format(time.RFC3339),
			time.Date(2026, 1, 16, 19, 0, 0, 0, time.UTC).Format(time.RFC3339),
		},
	}, map[string]string{"X-User-ID": "owner-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		PublicID   string `json:"publicId"`
		AdminToken string `json:"adminToken"`
		Candidates []struct {
			ID string `json:"id"`
		} `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.PublicID)
	require.NotEmpty(t, resp.AdminToken)
	require.Len(t, resp.Candidates, 2)

	for _, c := range resp.Candidates {
		candidateIDs = append(candidateIDs, c.ID)
	}
	return resp.PublicID, resp.AdminToken, candidateIDs
}

func postVote(t *testing.T, server *TestServer, publicID, name, response, candidateID string) {
	t.Helper()
	rec := server.Request("POST", fmt.Sprintf("/api/v1/events/%s/votes", publicID), map[string]interface{}{
		"name": name,
		"choices": []map[string]string{
			{"candidateDateId": candidateID, "response": response},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

type snapshotResponse struct {
	PublicID         string `json:"publicId"`
	ScheduleStatus   string `json:"scheduleStatus"`
	AccountingStatus string `json:"accountingStatus"`
	TotalAmount      *int   `json:"totalAmount"`
	PerPersonAmount  *int   `json:"perPersonAmount"`
	Votes            []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"votes"`
	Rounds []struct {
		ID               string `json:"id"`
		Order            int    `json:"order"`
		Name             string `json:"name"`
		AccountingStatus string `json:"accountingStatus"`
		PerPersonAmount  *int   `json:"perPersonAmount"`
		Attendances      []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			IsActual bool   `json:"isActual"`
			Source   string `json:"source"`
			Payment  *struct {
				ID     string  `json:"id"`
				Amount int     `json:"amount"`
				Status string  `json:"status"`
				Method *string `json:"method"`
			} `json:"payment"`
		} `json:"attendances"`
	} `json:"rounds"`
}

func getSnapshot(t *testing.T, server *TestServer, publicID string) snapshotResponse {
	t.Helper()
	rec := server.Request("GET", "/api/v1/events/"+publicID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var snap snapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

// TestE2E_CompleteEventJourney は幹事くんの主要フローを一気通貫で検証する
// 作成 → 投票 → 日程確定 → 会計確定 → 支払申請 → 承認
func TestE2E_CompleteEventJourney(t *testing.T) {
	server := getTestServer(t)
	adminHeaders := func(token string) map[string]string {
		return map[string]string{"X-Admin-Token": token}
	}

	publicID, adminToken, candidateIDs := createTestEvent(t, server)

	// 投票: 前向き回答の2名が名簿に入る
	postVote(t, server, publicID, "田中", "YES", candidateIDs[0])
	postVote(t, server, publicID, "佐藤", "MAYBE", candidateIDs[0])
	postVote(t, server, publicID, "鈴木", "NO", candidateIDs[0])

	// 日程確定
	rec := server.Request("POST", fmt.Sprintf("/api/v1/events/%s/schedule", publicID),
		map[string]string{"candidateDateId": candidateIDs[0]}, adminHeaders(adminToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap := getSnapshot(t, server, publicID)
	assert.Equal(t, "CONFIRMED", snap.ScheduleStatus)
	require.Len(t, snap.Rounds, 1)
	require.Len(t, snap.Rounds[0].Attendances, 2)
	names := []string{snap.Rounds[0].Attendances[0].Name, snap.Rounds[0].Attendances[1].Name}
	assert.ElementsMatch(t, []string{"田中", "佐藤"}, names)
	for _, a := range snap.Rounds[0].Attendances {
		assert.True(t, a.IsActual)
		assert.Equal(t, "VOTE", a.Source)
	}

	// 会計確定: 9000円を2名で割って1人4500円
	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/accounting", publicID),
		map[string]interface{}{"totalAmount": 9000}, adminHeaders(adminToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap = getSnapshot(t, server, publicID)
	assert.Equal(t, "CONFIRMED", snap.AccountingStatus)
	require.NotNil(t, snap.PerPersonAmount)
	assert.Equal(t, 4500, *snap.PerPersonAmount)
	for _, a := range snap.Rounds[0].Attendances {
		require.NotNil(t, a.Payment)
		assert.Equal(t, 4500, a.Payment.Amount)
		assert.Equal(t, "UNSUBMITTED", a.Payment.Status)
	}

	// 支払申請（出席者本人、トークン不要）
	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/payments/apply", publicID),
		map[string]string{"attendeeName": "田中", "method": "PAYPAY"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var applied []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	require.Len(t, applied, 1)
	assert.Equal(t, "PENDING", applied[0].Status)

	// 幹事が承認
	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/payments/%s/approve", publicID, applied[0].ID),
		nil, adminHeaders(adminToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap = getSnapshot(t, server, publicID)
	for _, a := range snap.Rounds[0].Attendances {
		if a.Name == "田中" {
			require.NotNil(t, a.Payment)
			assert.Equal(t, "APPROVED", a.Payment.Status)
		}
	}
}

// TestE2E_RoundManagement は次会の追加・削除と名簿の複製を検証する
func TestE2E_RoundManagement(t *testing.T) {
	server := getTestServer(t)
	publicID, adminToken, candidateIDs := createTestEvent(t, server)
	headers := map[string]string{"X-Admin-Token": adminToken}

	postVote(t, server, publicID, "田中", "YES", candidateIDs[0])
	postVote(t, server, publicID, "佐藤", "YES", candidateIDs[0])

	rec := server.Request("POST", fmt.Sprintf("/api/v1/events/%s/schedule", publicID),
		map[string]string{"candidateDateId": candidateIDs[0]}, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// 2次会を追加: 1次会の名簿が実出席フラグなしで複製される
	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/rounds", publicID), map[string]string{}, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap := getSnapshot(t, server, publicID)
	require.Len(t, snap.Rounds, 2)
	assert.Equal(t, "2次会", snap.Rounds[1].Name)
	require.Len(t, snap.Rounds[1].Attendances, 2)
	for _, a := range snap.Rounds[1].Attendances {
		assert.False(t, a.IsActual)
		assert.Equal(t, "MANUAL", a.Source)
	}

	// 1次会は削除できない
	rec = server.Request("DELETE", fmt.Sprintf("/api/v1/events/%s/rounds/%s", publicID, snap.Rounds[0].ID), nil, headers)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// 2次会を削除
	rec = server.Request("DELETE", fmt.Sprintf("/api/v1/events/%s/rounds/%s", publicID, snap.Rounds[1].ID), nil, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap = getSnapshot(t, server, publicID)
	assert.Len(t, snap.Rounds, 1)
}

// TestE2E_VotingLock は投票ロック中の投票拒否を検証する
func TestE2E_VotingLock(t *testing.T) {
	server := getTestServer(t)
	publicID, adminToken, candidateIDs := createTestEvent(t, server)
	headers := map[string]string{"X-Admin-Token": adminToken}

	rec := server.Request("POST", fmt.Sprintf("/api/v1/events/%s/lock", publicID),
		map[string]bool{"locked": true}, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/votes", publicID), map[string]interface{}{
		"name": "田中",
		"choices": []map[string]string{
			{"candidateDateId": candidateIDs[0], "response": "YES"},
		},
	}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 解除すれば投票できる
	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/lock", publicID),
		map[string]bool{"locked": false}, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	postVote(t, server, publicID, "田中", "YES", candidateIDs[0])
}

// TestE2E_UnconfirmCascade は日程確定取消で出欠・会計・支払が破棄されることを検証する
func TestE2E_UnconfirmCascade(t *testing.T) {
	server := getTestServer(t)
	publicID, adminToken, candidateIDs := createTestEvent(t, server)
	headers := map[string]string{"X-Admin-Token": adminToken}

	postVote(t, server, publicID, "田中", "YES", candidateIDs[0])

	rec := server.Request("POST", fmt.Sprintf("/api/v1/events/%s/schedule", publicID),
		map[string]string{"candidateDateId": candidateIDs[0]}, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/accounting", publicID),
		map[string]interface{}{"totalAmount": 5000}, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// 日程確定を取消
	rec = server.Request("DELETE", fmt.Sprintf("/api/v1/events/%s/schedule", publicID), nil, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap := getSnapshot(t, server, publicID)
	assert.Equal(t, "PENDING", snap.ScheduleStatus)
	assert.Equal(t, "PENDING", snap.AccountingStatus)
	assert.Nil(t, snap.TotalAmount)
	assert.Empty(t, snap.Rounds)
	// 投票は残る
	assert.Len(t, snap.Votes, 1)
}

// TestE2E_AdminTokenRequired は幹事トークンなしの管理操作が拒否されることを検証する
func TestE2E_AdminTokenRequired(t *testing.T) {
	server := getTestServer(t)
	publicID, _, candidateIDs := createTestEvent(t, server)

	rec := server.Request("POST", fmt.Sprintf("/api/v1/events/%s/schedule", publicID),
		map[string]string{"candidateDateId": candidateIDs[0]}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/schedule", publicID),
		map[string]string{"candidateDateId": candidateIDs[0]},
		map[string]string{"X-Admin-Token": "wrong-token"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 幹事本人（X-User-ID）でも操作できる
	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/schedule", publicID),
		map[string]string{"candidateDateId": candidateIDs[0]},
		map[string]string{"X-User-ID": "owner-1"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// TestE2E_AccountingReversalRoundTrip は会計の確定→取消→再確定で
// 同じ入力から同じ割り勘結果が再現されることを検証する
func TestE2E_AccountingReversalRoundTrip(t *testing.T) {
	server := getTestServer(t)
	publicID, adminToken, candidateIDs := createTestEvent(t, server)
	headers := map[string]string{"X-Admin-Token": adminToken}

	postVote(t, server, publicID, "田中", "YES", candidateIDs[0])
	postVote(t, server, publicID, "佐藤", "YES", candidateIDs[0])
	postVote(t, server, publicID, "鈴木", "YES", candidateIDs[0])

	rec := server.Request("POST", fmt.Sprintf("/api/v1/events/%s/schedule", publicID),
		map[string]string{"candidateDateId": candidateIDs[0]}, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap := getSnapshot(t, server, publicID)
	require.Len(t, snap.Rounds, 1)
	require.Len(t, snap.Rounds[0].Attendances, 3)
	var adjustedID string
	for _, a := range snap.Rounds[0].Attendances {
		if a.Name == "田中" {
			adjustedID = a.ID
		}
	}
	require.NotEmpty(t, adjustedID)

	// 幹事の田中は4000円、残り6000円を2名で3000円ずつ
	confirmBody := map[string]interface{}{
		"totalAmount": 10000,
		"adjustments": []map[string]interface{}{
			{"attendanceId": adjustedID, "amount": 4000},
		},
	}

	splitByName := func(snap snapshotResponse) map[string]int {
		byName := map[string]int{}
		for _, a := range snap.Rounds[0].Attendances {
			require.NotNil(t, a.Payment)
			assert.Equal(t, "UNSUBMITTED", a.Payment.Status)
			byName[a.Name] = a.Payment.Amount
		}
		return byName
	}

	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/accounting", publicID), confirmBody, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	first := getSnapshot(t, server, publicID)
	firstAmounts := splitByName(first)
	assert.Equal(t, map[string]int{"田中": 4000, "佐藤": 3000, "鈴木": 3000}, firstAmounts)
	require.NotNil(t, first.Rounds[0].PerPersonAmount)
	firstPerPerson := *first.Rounds[0].PerPersonAmount

	// 取消で支払は消え、会計は保留へ戻る
	rec = server.Request("DELETE", fmt.Sprintf("/api/v1/events/%s/accounting", publicID), nil, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	reversed := getSnapshot(t, server, publicID)
	assert.Equal(t, "PENDING", reversed.AccountingStatus)
	assert.Equal(t, "PENDING", reversed.Rounds[0].AccountingStatus)
	assert.Nil(t, reversed.Rounds[0].PerPersonAmount)
	for _, a := range reversed.Rounds[0].Attendances {
		assert.Nil(t, a.Payment)
	}

	// 同じ入力で再確定すると全員の割り当てが一致する
	rec = server.Request("POST", fmt.Sprintf("/api/v1/events/%s/accounting", publicID), confirmBody, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	second := getSnapshot(t, server, publicID)
	assert.Equal(t, "CONFIRMED", second.AccountingStatus)
	assert.Equal(t, firstAmounts, splitByName(second))
	require.NotNil(t, second.Rounds[0].PerPersonAmount)
	assert.Equal(t, firstPerPerson, *second.Rounds[0].PerPersonAmount)
}
