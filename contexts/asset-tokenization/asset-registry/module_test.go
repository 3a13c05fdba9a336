package assetregistry_test

import (
	"context"
	"errors"
	"testing"

	assetregistry "tokeniza/contexts/asset-tokenization/asset-registry"
	domainerrors "tokeniza/contexts/asset-tokenization/asset-registry/domain/errors"
	httptransport "tokeniza/contexts/asset-tokenization/asset-registry/transport/http"
	"tokeniza/internal/platform/ledger"
	"tokeniza/internal/platform/ledger/fake"
)

func newAssetRequest() httptransport.CreateAssetRequest {
	return httptransport.CreateAssetRequest{
		Name:        "Marina Tower",
		Description: "Waterfront commercial building",
		AssetType:   "RealEstate",
		Value:       2_500_000,
		TotalSupply: 1_000,
		Owner:       "0x00000000000000000000000000000000000000aa",
	}
}

func TestAssetLifecycleDraftToTokenized(t *testing.T) {
	chain := fake.New()
	module := assetregistry.NewInMemoryModule(chain, nil)
	ctx := context.Background()

	created, err := module.Handler.CreateAssetHandler(ctx, newAssetRequest())
	if err != nil {
		t.Fatalf("create asset failed: %v", err)
	}
	if created.Status != "Draft" {
		t.Fatalf("expected Draft, got %s", created.Status)
	}
	if created.AvailableSupply != created.TotalSupply {
		t.Fatalf("expected available supply %d, got %d", created.TotalSupply, created.AvailableSupply)
	}

	submitted, err := module.Handler.SubmitAssetHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submitted.Status != "PendingApproval" {
		t.Fatalf("expected PendingApproval, got %s", submitted.Status)
	}

	approved, err := module.Handler.ApproveAssetHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != "Approved" {
		t.Fatalf("expected Approved, got %s", approved.Status)
	}

	tokenized, err := module.Handler.TokenizeAssetHandler(ctx, created.ID, httptransport.TokenizeAssetRequest{
		Symbol:      "MARINA",
		Decimals:    18,
		TotalSupply: 1_000,
	})
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if tokenized.Status != "Tokenized" {
		t.Fatalf("expected Tokenized, got %s", tokenized.Status)
	}
	if tokenized.ContractAddress == "" {
		t.Fatalf("expected contract address")
	}

	balance, err := chain.GetTokenBalance(ctx, tokenized.ContractAddress, created.Owner)
	if err != nil {
		t.Fatalf("token balance failed: %v", err)
	}
	if balance != 1_000 {
		t.Fatalf("expected minted supply 1000 for owner, got %d", balance)
	}

	_, err = module.Handler.TokenizeAssetHandler(ctx, created.ID, httptransport.TokenizeAssetRequest{
		Symbol:      "MARINA",
		Decimals:    18,
		TotalSupply: 1_000,
	})
	if !errors.Is(err, domainerrors.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure on second tokenize, got %v", err)
	}
}

func TestAssetInvalidTransitions(t *testing.T) {
	module := assetregistry.NewInMemoryModule(fake.New(), nil)
	ctx := context.Background()

	created, err := module.Handler.CreateAssetHandler(ctx, newAssetRequest())
	if err != nil {
		t.Fatalf("create asset failed: %v", err)
	}

	if _, err := module.Handler.ApproveAssetHandler(ctx, created.ID); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition approving a draft, got %v", err)
	}

	if _, err := module.Handler.TokenizeAssetHandler(ctx, created.ID, httptransport.TokenizeAssetRequest{
		Symbol:      "MARINA",
		TotalSupply: 100,
	}); !errors.Is(err, domainerrors.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure tokenizing a draft, got %v", err)
	}

	retired, err := module.Handler.RetireAssetHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("retire failed: %v", err)
	}
	if retired.Status != "Retired" {
		t.Fatalf("expected Retired, got %s", retired.Status)
	}

	if _, err := module.Handler.SubmitAssetHandler(ctx, created.ID); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition submitting a retired asset, got %v", err)
	}
}

func TestAssetCreateValidation(t *testing.T) {
	module := assetregistry.NewInMemoryModule(fake.New(), nil)
	ctx := context.Background()

	req := newAssetRequest()
	req.AssetType = "Yacht"
	if _, err := module.Handler.CreateAssetHandler(ctx, req); !errors.Is(err, domainerrors.ErrInvalidAssetRequest) {
		t.Fatalf("expected invalid request for unknown asset type, got %v", err)
	}

	req = newAssetRequest()
	req.AssetType = "Other"
	if _, err := module.Handler.CreateAssetHandler(ctx, req); !errors.Is(err, domainerrors.ErrInvalidAssetRequest) {
		t.Fatalf("expected invalid request for Other without a label, got %v", err)
	}

	req.AssetTypeLabel = "Vintage Car"
	created, err := module.Handler.CreateAssetHandler(ctx, req)
	if err != nil {
		t.Fatalf("create Other asset failed: %v", err)
	}
	if created.AssetTypeLabel != "Vintage Car" {
		t.Fatalf("expected label kept, got %q", created.AssetTypeLabel)
	}

	req = newAssetRequest()
	req.TotalSupply = 0
	if _, err := module.Handler.CreateAssetHandler(ctx, req); !errors.Is(err, domainerrors.ErrInvalidAssetRequest) {
		t.Fatalf("expected invalid request for zero supply, got %v", err)
	}
}

func TestTokenizeDeployFailureLeavesAssetUntouched(t *testing.T) {
	chain := fake.New()
	module := assetregistry.NewInMemoryModule(chain, nil)
	ctx := context.Background()

	created, err := module.Handler.CreateAssetHandler(ctx, newAssetRequest())
	if err != nil {
		t.Fatalf("create asset failed: %v", err)
	}
	if _, err := module.Handler.SubmitAssetHandler(ctx, created.ID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := module.Handler.ApproveAssetHandler(ctx, created.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	chain.Fail["deploy"] = ledger.Unreachable("deploy", errors.New("node down"))
	_, err = module.Handler.TokenizeAssetHandler(ctx, created.ID, httptransport.TokenizeAssetRequest{
		Symbol:      "MARINA",
		TotalSupply: 1_000,
	})
	if !errors.Is(err, ledger.ErrUnreachable) {
		t.Fatalf("expected unreachable error, got %v", err)
	}

	after, err := module.Handler.GetAssetHandler(ctx, created.ID)
	if err != nil {
		t.Fatalf("get asset failed: %v", err)
	}
	if after.Status != "Approved" || after.TokenAddress != "" {
		t.Fatalf("expected asset untouched after deploy failure, got status %s address %q", after.Status, after.TokenAddress)
	}

	retried, err := module.Handler.TokenizeAssetHandler(ctx, created.ID, httptransport.TokenizeAssetRequest{
		Symbol:      "MARINA",
		TotalSupply: 1_000,
	})
	if err != nil {
		t.Fatalf("retry tokenize failed: %v", err)
	}
	if retried.Status != "Tokenized" {
		t.Fatalf("expected Tokenized after retry, got %s", retried.Status)
	}
}

func TestTokenizeReusesExistingDeployment(t *testing.T) {
	chain := fake.New()
	module := assetregistry.NewInMemoryModule(chain, nil)
	ctx := context.Background()

	created, err := module.Handler.CreateAssetHandler(ctx, newAssetRequest())
	if err != nil {
		t.Fatalf("create asset failed: %v", err)
	}
	if _, err := module.Handler.SubmitAssetHandler(ctx, created.ID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := module.Handler.ApproveAssetHandler(ctx, created.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// Simulates a crash after the deploy landed but before the registry write:
	// the deployment already exists under the asset's idempotency token.
	orphan, err := chain.DeployAndMint(ctx, ledger.DeployRequest{
		IdempotencyToken: created.ID,
		Name:             created.Name,
		Symbol:           "MARINA",
		TotalSupply:      1_000,
		Owner:            created.Owner,
	})
	if err != nil {
		t.Fatalf("seed deployment failed: %v", err)
	}

	tokenized, err := module.Handler.TokenizeAssetHandler(ctx, created.ID, httptransport.TokenizeAssetRequest{
		Symbol:      "MARINA",
		TotalSupply: 1_000,
	})
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}
	if tokenized.ContractAddress != orphan.ContractAddress {
		t.Fatalf("expected reused deployment %s, got %s", orphan.ContractAddress, tokenized.ContractAddress)
	}
}

func TestTokenizeSymbolValidation(t *testing.T) {
	module := assetregistry.NewInMemoryModule(fake.New(), nil)
	ctx := context.Background()

	for _, symbol := range []string{"", "marina", "WAY-TOO-LONG-SYMBOL", "BAD SYM"} {
		_, err := module.Handler.TokenizeAssetHandler(ctx, "asset-1", httptransport.TokenizeAssetRequest{
			Symbol:      symbol,
			TotalSupply: 100,
		})
		if !errors.Is(err, domainerrors.ErrInvalidTokenizeRequest) {
			t.Fatalf("expected invalid tokenize request for symbol %q, got %v", symbol, err)
		}
	}
}

func TestListAssetsFilterAndPagination(t *testing.T) {
	module := assetregistry.NewInMemoryModule(fake.New(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := module.Handler.CreateAssetHandler(ctx, newAssetRequest()); err != nil {
			t.Fatalf("create asset failed: %v", err)
		}
	}

	page, err := module.Handler.ListAssetsHandler(ctx, "", "", "", 2)
	if err != nil {
		t.Fatalf("list assets failed: %v", err)
	}
	if page.Count != 2 || page.NextCursor == "" {
		t.Fatalf("expected first page of 2 with cursor, got count %d cursor %q", page.Count, page.NextCursor)
	}

	rest, err := module.Handler.ListAssetsHandler(ctx, "", "", page.NextCursor, 2)
	if err != nil {
		t.Fatalf("list assets second page failed: %v", err)
	}
	if rest.Count != 1 || rest.NextCursor != "" {
		t.Fatalf("expected final page of 1, got count %d cursor %q", rest.Count, rest.NextCursor)
	}

	drafts, err := module.Handler.ListAssetsHandler(ctx, "Draft", "", "", 0)
	if err != nil {
		t.Fatalf("list drafts failed: %v", err)
	}
	if drafts.Count != 3 {
		t.Fatalf("expected 3 drafts, got %d", drafts.Count)
	}
}
