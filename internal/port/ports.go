// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations. The data side is a PostgREST-style
// relational store; the services depend only on this contract, never on a
// vendor client.
package port

import (
	"context"
	"io"
	"time"

	"github.com/cuide-se/cuidese-api/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	Flush()
}

// ListOptions narrows and orders a listing. Filters compose conjunctively;
// an unset (or "all") value imposes no constraint.
type ListOptions struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

// ChangeEvent is one change notification from the realtime feed.
type ChangeEvent struct {
	Table string
	Type  string // INSERT | UPDATE | DELETE
}

// ChangeFeed is the subscribe-to-change primitive of the data backend.
// Close tears the subscription down; leaking it leaks a connection.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table string) (<-chan ChangeEvent, error)
	Close() error
}

// BlobStore is the file/blob storage boundary (document and receipt
// uploads). The contract is upload(path, file) -> stored path.
type BlobStore interface {
	Upload(ctx context.Context, path string, contentType string, body io.Reader) (string, error)
}

// ClientStore handles client records.
type ClientStore interface {
	ListClients(ctx context.Context, opts ListOptions) ([]domain.Client, error)
	GetClient(ctx context.Context, id string) (*domain.Client, error)
	CreateClient(ctx context.Context, in *domain.ClientInput) (*domain.Client, error)
	UpdateClient(ctx context.Context, id string, in *domain.ClientInput) (*domain.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// ProfessionalStore handles professional records.
type ProfessionalStore interface {
	ListProfessionals(ctx context.Context, opts ListOptions) ([]domain.Professional, error)
	GetProfessional(ctx context.Context, id string) (*domain.Professional, error)
	CreateProfessional(ctx context.Context, in *domain.ProfessionalInput) (*domain.Professional, error)
	UpdateProfessional(ctx context.Context, id string, in *domain.ProfessionalInput) (*domain.Professional, error)
	DeleteProfessional(ctx context.Context, id string) error
}

// CatalogStore handles services and service packages.
type CatalogStore interface {
	ListServices(ctx context.Context, opts ListOptions) ([]domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	CreateService(ctx context.Context, in *domain.ServiceInput) (*domain.Service, error)
	UpdateService(ctx context.Context, id string, in *domain.ServiceInput) (*domain.Service, error)
	DeleteService(ctx context.Context, id string) error

	ListPackages(ctx context.Context, opts ListOptions) ([]domain.ServicePackage, error)
	GetPackage(ctx context.Context, id string) (*domain.ServicePackage, error)
	CreatePackage(ctx context.Context, in *domain.ServicePackageInput) (*domain.ServicePackage, error)
	UpdatePackage(ctx context.Context, id string, in *domain.ServicePackageInput) (*domain.ServicePackage, error)
	DeletePackage(ctx context.Context, id string) error
}

// OrderStore handles orders (comandas) and their items.
type OrderStore interface {
	ListOrders(ctx context.Context, opts ListOptions) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	CreateOrder(ctx context.Context, in *domain.OrderInput) (*domain.Order, error)
	UpdateOrder(ctx context.Context, id string, in *domain.OrderInput) (*domain.Order, error)
	SetOrderStatus(ctx context.Context, id, status string, closedAt *time.Time) error
	DeleteOrder(ctx context.Context, id string) error

	ListOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	AddOrderItem(ctx context.Context, orderID string, in *domain.OrderItemInput) (*domain.OrderItem, error)
	DeleteOrderItem(ctx context.Context, orderID, itemID string) error
}

// InventoryStore handles products and stock movements.
type InventoryStore interface {
	ListProducts(ctx context.Context, opts ListOptions) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in *domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in *domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListStockMovements(ctx context.Context, productID string, opts ListOptions) ([]domain.StockMovement, error)
	AdjustStock(ctx context.Context, adj *domain.StockAdjustment) (*domain.Product, error)
}

// FinanceStore handles financial transactions.
type FinanceStore interface {
	ListTransactions(ctx context.Context, f domain.TransactionFilter, opts ListOptions) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, in *domain.TransactionInput) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in *domain.TransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	GetBalance(ctx context.Context) (*domain.Balance, error)
}

// LoyaltyStore handles loyalty points, referrals and promotions.
type LoyaltyStore interface {
	ListLoyaltyEntries(ctx context.Context, clientID string) ([]domain.LoyaltyEntry, error)
	AddLoyaltyEntry(ctx context.Context, entry *domain.LoyaltyEntry) (*domain.LoyaltyEntry, error)
	GetLoyaltyBalance(ctx context.Context, clientID string) (*domain.LoyaltyBalance, error)

	ListReferrals(ctx context.Context, opts ListOptions) ([]domain.Referral, error)
	CreateReferral(ctx context.Context, ref *domain.Referral) (*domain.Referral, error)
	ComputeReferralRewards(ctx context.Context, referrerClientID string) (int, error)

	ListPromotions(ctx context.Context, opts ListOptions) ([]domain.Promotion, error)
	CreatePromotion(ctx context.Context, in *domain.PromotionInput) (*domain.Promotion, error)
	UpdatePromotion(ctx context.Context, id string, in *domain.PromotionInput) (*domain.Promotion, error)
	DeletePromotion(ctx context.Context, id string) error

	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// UserStore handles staff accounts, credentials and refresh tokens.
type UserStore interface {
	ListUsers(ctx context.Context, opts ListOptions) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, in *domain.UserInput, passwordHash string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, in *domain.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	RecordLogin(ctx context.Context, id string, at time.Time) error

	GetCredential(ctx context.Context, userID string) (*domain.Credential, error)
	SetCredential(ctx context.Context, userID, passwordHash string) error

	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}
