// Package dynamo implementa los repositorios de registros y auditoría sobre
// DynamoDB. La tabla de registros usa (clinic_id, product_id) como clave; la de
// auditoría usa pk=CLINIC#<id>|SYSTEM, sk=<timestamp>#<log_id> y un índice GSI1
// (gsi1pk="AUDIT", sk) para consultas sin clínica.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/jhoicas/clinic-ledger/internal/domain"
	"github.com/jhoicas/clinic-ledger/internal/domain/entity"
	"github.com/jhoicas/clinic-ledger/internal/domain/repository"
	"github.com/jhoicas/clinic-ledger/pkg/config"
)

// batchSize máximo de BatchWriteItem.
const batchSize = 25

// skUpper sufijo que deja dentro del rango todos los log_id del mismo instante.
const skUpper = "#\uffff"

// API subconjunto del cliente de DynamoDB que usa el store.
type API interface {
	dynamodb.QueryAPIClient
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, opts ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var (
	_ repository.InventoryRecordRepository = (*Store)(nil)
	_ repository.AuditLogRepository        = (*Store)(nil)
)

// Store implementa ambos puertos sobre dos tablas.
type Store struct {
	client       API
	recordsTable string
	auditTable   string
}

// NewClient construye el cliente con la cadena de credenciales por defecto.
// Endpoint permite apuntar a DynamoDB Local.
func NewClient(ctx context.Context, cfg config.DynamoConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// NewStore construye el store.
func NewStore(client API, recordsTable, auditTable string) *Store {
	return &Store{client: client, recordsTable: recordsTable, auditTable: auditTable}
}

// mapErr traduce errores del SDK a errores de dominio. Las fallas del lado
// servidor, de red o de contexto quedan como ErrStoreUnavailable.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, r := range canceled.CancellationReasons {
			code := aws.ToString(r.Code)
			if code == "ConditionalCheckFailed" || code == "TransactionConflict" {
				return fmt.Errorf("%s: %w", op, domain.ErrVersionConflict)
			}
		}
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
	}
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return fmt.Errorf("%s: %w", op, domain.ErrVersionConflict)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorFault() == smithy.FaultClient {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}

// ─── registros ───────────────────────────────────────────────────────────────

// Get obtiene el registro (clínica, producto).
func (s *Store) Get(ctx context.Context, clinicID, productID string) (*entity.InventoryRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.recordsTable),
		Key:            recordKey(clinicID, productID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, mapErr("get inventory record", err)
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	var it recordItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal inventory record: %w", err)
	}
	return it.toEntity()
}

// ListByClinic lista los registros de la clínica ordenados por producto.
func (s *Store) ListByClinic(ctx context.Context, clinicID string) ([]*entity.InventoryRecord, error) {
	return s.listRecords(ctx, clinicID, false)
}

// ListLowStock lista los registros bajo su mínimo.
func (s *Store) ListLowStock(ctx context.Context, clinicID string) ([]*entity.InventoryRecord, error) {
	return s.listRecords(ctx, clinicID, true)
}

func (s *Store) listRecords(ctx context.Context, clinicID string, lowOnly bool) ([]*entity.InventoryRecord, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.recordsTable),
		KeyConditionExpression: aws.String("clinic_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: clinicID},
		},
		ConsistentRead: aws.Bool(true),
	}
	if lowOnly {
		in.FilterExpression = aws.String("quantity_in_stock < minimum_stock_level")
	}
	out := make([]*entity.InventoryRecord, 0)
	p := dynamodb.NewQueryPaginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, mapErr("list inventory records", err)
		}
		for _, raw := range page.Items {
			var it recordItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, fmt.Errorf("unmarshal inventory record: %w", err)
			}
			rec, err := it.toEntity()
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

// Commit escribe el registro condicionado a la versión y la entrada de
// auditoría en una sola TransactWriteItems.
func (s *Store) Commit(ctx context.Context, m repository.Mutation) error {
	in, err := s.commitInput(m)
	if err != nil {
		return err
	}
	_, err = s.client.TransactWriteItems(ctx, in)
	return mapErr("commit inventory record", err)
}

func (s *Store) commitInput(m repository.Mutation) (*dynamodb.TransactWriteItemsInput, error) {
	it, err := toRecordItem(m.Record)
	if err != nil {
		return nil, err
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return nil, fmt.Errorf("marshal inventory record: %w", err)
	}
	put := &types.Put{TableName: aws.String(s.recordsTable), Item: av}
	if m.ExpectedVersion == 0 {
		put.ConditionExpression = aws.String("attribute_not_exists(product_id)")
	} else {
		put.ConditionExpression = aws.String("version = :expected")
		put.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(m.ExpectedVersion, 10)},
		}
	}
	items := []types.TransactWriteItem{{Put: put}}

	if m.Entry != nil {
		audit, err := s.auditPut(m.Entry)
		if err != nil {
			return nil, err
		}
		items = append(items, types.TransactWriteItem{Put: audit})
	}
	return &dynamodb.TransactWriteItemsInput{TransactItems: items, ClientRequestToken: requestToken(m)}, nil
}

// requestToken identifica la mutación para que DynamoDB descarte un reenvío
// idéntico dentro de su ventana de idempotencia.
func requestToken(m repository.Mutation) *string {
	if m.Entry == nil || m.Entry.LogID == "" {
		return nil
	}
	name := m.Entry.LogID + "#" + strconv.FormatInt(m.ExpectedVersion, 10)
	return aws.String(uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String())
}

func recordKey(clinicID, productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"clinic_id":  &types.AttributeValueMemberS{Value: clinicID},
		"product_id": &types.AttributeValueMemberS{Value: productID},
	}
}

// ─── auditoría ───────────────────────────────────────────────────────────────

func (s *Store) auditPut(e *entity.AuditLogEntry) (*types.Put, error) {
	it, err := toAuditItem(e)
	if err != nil {
		return nil, err
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return nil, fmt.Errorf("marshal audit log: %w", err)
	}
	return &types.Put{
		TableName:           aws.String(s.auditTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	}, nil
}

// Contains lee la entrada por su clave con lectura consistente.
func (s *Store) Contains(ctx context.Context, e *entity.AuditLogEntry) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.auditTable),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: auditPK(e.ClinicIDValue())},
			"sk": &types.AttributeValueMemberS{Value: auditSK(e.Timestamp, e.LogID)},
		},
		ConsistentRead:       aws.Bool(true),
		ProjectionExpression: aws.String("pk"),
	})
	if err != nil {
		return false, mapErr("lookup audit log", err)
	}
	return out.Item != nil, nil
}

// Append agrega una entrada.
func (s *Store) Append(ctx context.Context, e *entity.AuditLogEntry) error {
	put, err := s.auditPut(e)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           put.TableName,
		Item:                put.Item,
		ConditionExpression: put.ConditionExpression,
	})
	return mapErr("append audit log", err)
}

// auditQuery arma la consulta por partición (clínica) o por GSI1 (todas),
// acotando sk por el rango de fechas del filtro.
func (s *Store) auditQuery(f repository.AuditFilter, newestFirst bool) *dynamodb.QueryInput {
	in := &dynamodb.QueryInput{
		TableName:        aws.String(s.auditTable),
		ScanIndexForward: aws.Bool(!newestFirst),
	}
	values := map[string]types.AttributeValue{}
	cond := "pk = :pk"
	if f.ClinicID != "" {
		values[":pk"] = &types.AttributeValueMemberS{Value: auditPK(f.ClinicID)}
	} else {
		in.IndexName = aws.String(auditGSI)
		cond = "gsi1pk = :pk"
		values[":pk"] = &types.AttributeValueMemberS{Value: auditGSIKey}
	}
	switch {
	case f.From != nil && f.To != nil:
		cond += " AND sk BETWEEN :lo AND :hi"
		values[":lo"] = &types.AttributeValueMemberS{Value: sortTime(*f.From)}
		values[":hi"] = &types.AttributeValueMemberS{Value: sortTime(*f.To) + skUpper}
	case f.From != nil:
		cond += " AND sk >= :lo"
		values[":lo"] = &types.AttributeValueMemberS{Value: sortTime(*f.From)}
	case f.To != nil:
		cond += " AND sk <= :hi"
		values[":hi"] = &types.AttributeValueMemberS{Value: sortTime(*f.To) + skUpper}
	}
	in.KeyConditionExpression = aws.String(cond)
	in.ExpressionAttributeValues = values
	return in
}

// scanAudit recorre las páginas y entrega las entradas que pasan el filtro.
func (s *Store) scanAudit(ctx context.Context, in *dynamodb.QueryInput, f repository.AuditFilter, fn func(*entity.AuditLogEntry) error) error {
	p := dynamodb.NewQueryPaginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return mapErr("query audit logs", err)
		}
		for _, raw := range page.Items {
			var it auditItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return fmt.Errorf("unmarshal audit log: %w", err)
			}
			e, err := it.toEntity()
			if err != nil {
				return err
			}
			if !f.Matches(e) {
				continue
			}
			if err := fn(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// Query devuelve la página pedida, más reciente primero, y el total.
func (s *Store) Query(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLogEntry, int, error) {
	all := make([]*entity.AuditLogEntry, 0)
	err := s.scanAudit(ctx, s.auditQuery(f, true), f, func(e *entity.AuditLogEntry) error {
		all = append(all, e)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	// GSI1 mezcla particiones; se reordena con el mismo criterio que los demás stores.
	sort.SliceStable(all, func(i, j int) bool { return all[i].NewerThan(all[j]) })
	return f.Page(all), len(all), nil
}

// Stream recorre las coincidencias en orden cronológico.
func (s *Store) Stream(ctx context.Context, f repository.AuditFilter, fn func(*entity.AuditLogEntry) error) error {
	return s.scanAudit(ctx, s.auditQuery(f, false), f, fn)
}

// DeleteBefore borra (o cuenta) las entradas anteriores a before salvo audit_cleanup.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time, dryRun bool) (int, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.auditTable),
		IndexName:              aws.String(auditGSI),
		KeyConditionExpression: aws.String("gsi1pk = :pk AND sk < :before"),
		FilterExpression:       aws.String("action_type <> :keep"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: auditGSIKey},
			":before": &types.AttributeValueMemberS{Value: sortTime(before)},
			":keep":   &types.AttributeValueMemberS{Value: entity.ActionAuditCleanup},
		},
		ProjectionExpression: aws.String("pk, sk"),
	}

	var keys []map[string]types.AttributeValue
	p := dynamodb.NewQueryPaginator(s.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, mapErr("query expired audit logs", err)
		}
		for _, raw := range page.Items {
			keys = append(keys, map[string]types.AttributeValue{"pk": raw["pk"], "sk": raw["sk"]})
		}
	}
	if dryRun {
		return len(keys), nil
	}

	deleted := 0
	for start := 0; start < len(keys); start += batchSize {
		end := min(start+batchSize, len(keys))
		reqs := make([]types.WriteRequest, 0, end-start)
		for _, k := range keys[start:end] {
			reqs = append(reqs, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: k}})
		}
		pending := map[string][]types.WriteRequest{s.auditTable: reqs}
		for len(pending) > 0 {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return deleted, mapErr("delete audit logs", err)
			}
			pending = out.UnprocessedItems
		}
		deleted += end - start
	}
	return deleted, nil
}
