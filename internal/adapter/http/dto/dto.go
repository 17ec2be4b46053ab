package dto

// CreateUserRequest is the request body for user registration.
type CreateUserRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Surname string `json:"surname" binding:"required,min=1,max=100"`
	Email   string `json:"email" binding:"required,email,max=254"`
}

// UserResponse is the response body for user queries.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// CreateWalletRequest is the request body for opening a wallet.
type CreateWalletRequest struct {
	Currency string `json:"currency" binding:"required,len=3"`
}

// WalletResponse is the response body for a single wallet.
type WalletResponse struct {
	Number   string `json:"number"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

// TopUpRequest is the request body for crediting a wallet.
// The amount travels as a string so no client-side float ever rounds it.
type TopUpRequest struct {
	Amount string `json:"amount" binding:"required,money_amount"`
}

// TopUpResponse carries the wallet balance after the credit.
type TopUpResponse struct {
	Number  string `json:"number"`
	Balance string `json:"balance"`
}

// SendRequest is the request body for a wallet-to-wallet transfer.
type SendRequest struct {
	Receiver string `json:"receiver" binding:"required,wallet_number"`
	Amount   string `json:"amount" binding:"required,money_amount"`
}

// TransferLogResponse is one immutable transfer record.
type TransferLogResponse struct {
	TransferID       string `json:"transfer_id"`
	Sender           string `json:"sender"`
	Receiver         string `json:"receiver"`
	CurrencySent     string `json:"currency_sent"`
	CurrencyReceived string `json:"currency_received"`
	MoneySent        string `json:"money_sent"`
	MoneyReceived    string `json:"money_received"`
	PaidOn           string `json:"paid_on"`
}

// BalancesResponse maps wallet number to balance for one owner.
type BalancesResponse struct {
	Wallets map[string]string `json:"wallets"`
}
