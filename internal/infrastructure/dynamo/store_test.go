package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
)

// fakeAPI guarda las entradas recibidas y responde con lo configurado.
type fakeAPI struct {
	items       []map[string]types.AttributeValue
	transact    *dynamodb.TransactWriteItemsInput
	transactErr error
	queries     []*dynamodb.QueryInput
	batches     int
	gets        []*dynamodb.GetItemInput
	getItem     map[string]types.AttributeValue
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	return &dynamodb.QueryOutput{Items: f.items}, nil
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.gets = append(f.gets, in)
	return &dynamodb.GetItemOutput{Item: f.getItem}, nil
}

func (f *fakeAPI) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.transact = in
	return &dynamodb.TransactWriteItemsOutput{}, f.transactErr
}

func (f *fakeAPI) BatchWriteItem(context.Context, *dynamodb.BatchWriteItemInput, ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batches++
	return &dynamodb.BatchWriteItemOutput{}, nil
}

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func sampleRecord() *entity.InventoryRecord {
	r := entity.NewInventoryRecord("C1", "P1")
	r.SetLots([]entity.Lot{{LotID: "L1", ExpirationDate: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), Quantity: 10}})
	r.Version = 3
	r.UpdatedAt = t0
	r.LastMovement = &entity.LastMovement{Type: entity.MovementTypeIn, Quantity: 10, ReferenceID: "F-1", Timestamp: t0}
	return r
}

func sampleEntry(logID, clinicID string, ts time.Time) *entity.AuditLogEntry {
	return &entity.AuditLogEntry{
		LogID:        logID,
		Timestamp:    ts,
		ActorID:      "u1",
		ClinicID:     entity.ClinicRef(clinicID),
		ActionType:   entity.ActionInventoryReplenished,
		ResourceType: entity.ResourceInventoryRecord,
		ResourceID:   "C1/P1",
		Details:      entity.AuditDetails{ProductID: "P1", Reason: "Reposición"},
		Severity:     entity.SeverityInfo,
		Status:       entity.StatusSuccess,
	}
}

// ─── conversión de ítems ─────────────────────────────────────────────────────

func TestRecordItem_Conversion(t *testing.T) {
	in := sampleRecord()
	it, err := toRecordItem(in)
	require.NoError(t, err)
	out, err := it.toEntity()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAuditItem_Claves(t *testing.T) {
	it, err := toAuditItem(sampleEntry("log-1", "C1", t0))
	require.NoError(t, err)
	assert.Equal(t, "CLINIC#C1", it.PK)
	assert.Equal(t, "2026-03-01T10:00:00.000000000Z#log-1", it.SK)
	assert.Equal(t, auditGSIKey, it.GSI1PK)

	sys, err := toAuditItem(sampleEntry("log-2", "", t0))
	require.NoError(t, err)
	assert.Equal(t, systemPK, sys.PK)
	back, err := sys.toEntity()
	require.NoError(t, err)
	assert.Nil(t, back.ClinicID)
}

// ─── Commit ──────────────────────────────────────────────────────────────────

func TestCommit_CondicionPorVersion(t *testing.T) {
	api := &fakeAPI{}
	s := NewStore(api, "records", "audit")

	err := s.Commit(context.Background(), repository.Mutation{Record: sampleRecord(), ExpectedVersion: 2, Entry: sampleEntry("log-1", "C1", t0)})
	require.NoError(t, err)
	require.Len(t, api.transact.TransactItems, 2)
	put := api.transact.TransactItems[0].Put
	assert.Equal(t, "version = :expected", aws.ToString(put.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberN{Value: "2"}, put.ExpressionAttributeValues[":expected"])
	assert.Equal(t, "audit", aws.ToString(api.transact.TransactItems[1].Put.TableName))

	err = s.Commit(context.Background(), repository.Mutation{Record: sampleRecord()})
	require.NoError(t, err)
	require.Len(t, api.transact.TransactItems, 1)
	assert.Equal(t, "attribute_not_exists(product_id)", aws.ToString(api.transact.TransactItems[0].Put.ConditionExpression))
}

func TestCommit_TokenDeIdempotencia(t *testing.T) {
	api := &fakeAPI{}
	s := NewStore(api, "records", "audit")
	m := repository.Mutation{Record: sampleRecord(), ExpectedVersion: 2, Entry: sampleEntry("log-1", "C1", t0)}

	require.NoError(t, s.Commit(context.Background(), m))
	first := aws.ToString(api.transact.ClientRequestToken)
	require.Len(t, first, 36)

	require.NoError(t, s.Commit(context.Background(), m))
	assert.Equal(t, first, aws.ToString(api.transact.ClientRequestToken), "un reenvío idéntico usa el mismo token")

	m.ExpectedVersion = 3
	require.NoError(t, s.Commit(context.Background(), m))
	assert.NotEqual(t, first, aws.ToString(api.transact.ClientRequestToken))

	require.NoError(t, s.Commit(context.Background(), repository.Mutation{Record: sampleRecord()}))
	assert.Nil(t, api.transact.ClientRequestToken)
}

func TestContains_LeeLaClaveDeAuditoria(t *testing.T) {
	api := &fakeAPI{}
	s := NewStore(api, "records", "audit")
	e := sampleEntry("log-1", "C1", t0)

	ok, err := s.Contains(context.Background(), e)
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, api.gets, 1)
	in := api.gets[0]
	assert.Equal(t, "audit", aws.ToString(in.TableName))
	assert.True(t, aws.ToBool(in.ConsistentRead))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "CLINIC#C1"}, in.Key["pk"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: auditSK(t0, "log-1")}, in.Key["sk"])

	api.getItem = map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: "CLINIC#C1"}}
	ok, err = s.Contains(context.Background(), e)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCommit_CondicionFallidaEsConflicto(t *testing.T) {
	api := &fakeAPI{transactErr: &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{{Code: aws.String("ConditionalCheckFailed")}, {Code: aws.String("None")}},
	}}
	err := NewStore(api, "records", "audit").Commit(context.Background(), repository.Mutation{Record: sampleRecord(), ExpectedVersion: 2})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestMapErr_ErrorDeRedEsStoreUnavailable(t *testing.T) {
	assert.ErrorIs(t, mapErr("op", errors.New("dial tcp: connection refused")), domain.ErrStoreUnavailable)
	assert.NoError(t, mapErr("op", nil))
}

// ─── auditoría ───────────────────────────────────────────────────────────────

func TestQuery_FiltraYOrdena(t *testing.T) {
	var items []map[string]types.AttributeValue
	for _, e := range []*entity.AuditLogEntry{
		sampleEntry("log-1", "C1", t0),
		sampleEntry("log-2", "C2", t0.Add(time.Minute)),
		sampleEntry("log-3", "C1", t0.Add(2*time.Minute)),
	} {
		it, err := toAuditItem(e)
		require.NoError(t, err)
		av, err := attributevalue.MarshalMap(it)
		require.NoError(t, err)
		items = append(items, av)
	}
	api := &fakeAPI{items: items}
	s := NewStore(api, "records", "audit")

	got, total, err := s.Query(context.Background(), repository.AuditFilter{ActorID: "u1", Text: "reposicion", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "log-3", got[0].LogID)
	assert.Equal(t, "log-2", got[1].LogID)
	assert.Equal(t, auditGSI, aws.ToString(api.queries[0].IndexName))

	from := t0
	_, _, err = s.Query(context.Background(), repository.AuditFilter{ClinicID: "C1", From: &from})
	require.NoError(t, err)
	q := api.queries[1]
	assert.Nil(t, q.IndexName)
	assert.Equal(t, "pk = :pk AND sk >= :lo", aws.ToString(q.KeyConditionExpression))
	assert.False(t, aws.ToBool(q.ScanIndexForward))
}

func TestDeleteBefore_DryRunNoBorra(t *testing.T) {
	api := &fakeAPI{items: []map[string]types.AttributeValue{
		{"pk": &types.AttributeValueMemberS{Value: "CLINIC#C1"}, "sk": &types.AttributeValueMemberS{Value: "a"}},
		{"pk": &types.AttributeValueMemberS{Value: "CLINIC#C1"}, "sk": &types.AttributeValueMemberS{Value: "b"}},
	}}
	s := NewStore(api, "records", "audit")

	n, err := s.DeleteBefore(context.Background(), t0, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, api.batches)

	n, err = s.DeleteBefore(context.Background(), t0, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, api.batches)
}
