// Package docs holds the Swagger document served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@vantrack.io"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Checks if the API is running",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Health"
                ],
                "summary": "Health Check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Creates an account and returns a token",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Register",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Account",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Authenticates a user",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Login",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Login Credentials",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/me": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Returns the authenticated user's profile",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Users"
                ],
                "summary": "Current User",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/settings": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Returns the user's currency and language",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Users"
                ],
                "summary": "Get Settings",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Partially updates currency and/or language",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Users"
                ],
                "summary": "Update Settings",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Settings",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/transactions": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Paginated transactions with derived remaining amount and status on debts",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Transactions"
                ],
                "summary": "List Transactions",
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page number",
                        "type": "integer"
                    },
                    {
                        "name": "per_page",
                        "in": "query",
                        "required": false,
                        "description": "Items per page",
                        "type": "integer"
                    },
                    {
                        "name": "search_term",
                        "in": "query",
                        "required": false,
                        "description": "Search description, category or contact",
                        "type": "string"
                    },
                    {
                        "name": "type",
                        "in": "query",
                        "required": false,
                        "description": "Transaction type",
                        "type": "string"
                    },
                    {
                        "name": "account",
                        "in": "query",
                        "required": false,
                        "description": "cash or bank",
                        "type": "string"
                    },
                    {
                        "name": "category",
                        "in": "query",
                        "required": false,
                        "description": "Category",
                        "type": "string"
                    },
                    {
                        "name": "contact_id",
                        "in": "query",
                        "required": false,
                        "description": "Contact ID",
                        "type": "string"
                    },
                    {
                        "name": "debts",
                        "in": "query",
                        "required": false,
                        "description": "Only receivables and payables",
                        "type": "boolean"
                    },
                    {
                        "name": "start_date",
                        "in": "query",
                        "required": false,
                        "description": "YYYY-MM-DD",
                        "type": "string"
                    },
                    {
                        "name": "end_date",
                        "in": "query",
                        "required": false,
                        "description": "YYYY-MM-DD",
                        "type": "string"
                    },
                    {
                        "name": "sort_by",
                        "in": "query",
                        "required": false,
                        "description": "date, amount, created_at",
                        "type": "string"
                    },
                    {
                        "name": "sort_direction",
                        "in": "query",
                        "required": false,
                        "description": "asc or desc",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Records a transaction. Payments may link to the receivable or payable they settle.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Transactions"
                ],
                "summary": "Create Transaction",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Transaction",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/transactions/{transaction_id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Transactions"
                ],
                "summary": "Get Transaction",
                "parameters": [
                    {
                        "name": "transaction_id",
                        "in": "path",
                        "required": true,
                        "description": "Transaction ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Transactions"
                ],
                "summary": "Update Transaction",
                "parameters": [
                    {
                        "name": "transaction_id",
                        "in": "path",
                        "required": true,
                        "description": "Transaction ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Transaction",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Deletes a transaction. Payments linked to it stay, with a dangling link.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Transactions"
                ],
                "summary": "Delete Transaction",
                "parameters": [
                    {
                        "name": "transaction_id",
                        "in": "path",
                        "required": true,
                        "description": "Transaction ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/balances": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Cash, bank, credit and loan balances derived from every transaction",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Balances"
                ],
                "summary": "Balance Summary",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/debts": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Receivables and payables with paid, remaining and status",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Balances"
                ],
                "summary": "List Debts",
                "parameters": [
                    {
                        "name": "direction",
                        "in": "query",
                        "required": false,
                        "description": "receivable or payable",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "open, partial or settled",
                        "type": "string"
                    },
                    {
                        "name": "contact_id",
                        "in": "query",
                        "required": false,
                        "description": "Contact ID",
                        "type": "string"
                    },
                    {
                        "name": "include_settled",
                        "in": "query",
                        "required": false,
                        "description": "Include settled debts",
                        "type": "boolean"
                    },
                    {
                        "name": "overdue",
                        "in": "query",
                        "required": false,
                        "description": "Only overdue debts",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/contacts/{contact_id}/ledger": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Every transaction and open debt between the user and one contact",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Contacts"
                ],
                "summary": "Contact Ledger",
                "parameters": [
                    {
                        "name": "contact_id",
                        "in": "path",
                        "required": true,
                        "description": "Contact ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/contacts": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Contacts"
                ],
                "summary": "List Contacts",
                "parameters": [
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page number",
                        "type": "integer"
                    },
                    {
                        "name": "per_page",
                        "in": "query",
                        "required": false,
                        "description": "Items per page",
                        "type": "integer"
                    },
                    {
                        "name": "search_term",
                        "in": "query",
                        "required": false,
                        "description": "Search name, email or phone",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Contacts"
                ],
                "summary": "Create Contact",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Contact",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/contacts/{contact_id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Contacts"
                ],
                "summary": "Get Contact",
                "parameters": [
                    {
                        "name": "contact_id",
                        "in": "path",
                        "required": true,
                        "description": "Contact ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Contacts"
                ],
                "summary": "Update Contact",
                "parameters": [
                    {
                        "name": "contact_id",
                        "in": "path",
                        "required": true,
                        "description": "Contact ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Contact",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Deletes a contact. Its transactions keep the name but lose the link.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Contacts"
                ],
                "summary": "Delete Contact",
                "parameters": [
                    {
                        "name": "contact_id",
                        "in": "path",
                        "required": true,
                        "description": "Contact ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/drafts": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Drafts in one action status, pending by default. status=all returns every draft.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Drafts"
                ],
                "summary": "List Drafts",
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "pending, confirmed, discarded or all",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Stores a pending draft. Nothing is booked until it is confirmed.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Drafts"
                ],
                "summary": "Create Draft",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Proposed transaction",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "422": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/drafts/{draft_id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Drafts"
                ],
                "summary": "Get Draft",
                "parameters": [
                    {
                        "name": "draft_id",
                        "in": "path",
                        "required": true,
                        "description": "Draft ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Edits a pending draft. Confirmed and discarded drafts answer 409.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Drafts"
                ],
                "summary": "Update Draft",
                "parameters": [
                    {
                        "name": "draft_id",
                        "in": "path",
                        "required": true,
                        "description": "Draft ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Proposed transaction",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/drafts/{draft_id}/confirm": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Books the draft as exactly one transaction",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Drafts"
                ],
                "summary": "Confirm Draft",
                "parameters": [
                    {
                        "name": "draft_id",
                        "in": "path",
                        "required": true,
                        "description": "Draft ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/drafts/{draft_id}/discard": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Drafts"
                ],
                "summary": "Discard Draft",
                "parameters": [
                    {
                        "name": "draft_id",
                        "in": "path",
                        "required": true,
                        "description": "Draft ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/budgets": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Budgets"
                ],
                "summary": "List Budgets",
                "parameters": [
                    {
                        "name": "month",
                        "in": "query",
                        "required": false,
                        "description": "YYYY-MM, every month when empty",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Budgets"
                ],
                "summary": "Create Budget",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Budget",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "409": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/budgets/progress": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Spending per budgeted category for a month",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Budgets"
                ],
                "summary": "Budget Progress",
                "parameters": [
                    {
                        "name": "month",
                        "in": "query",
                        "required": false,
                        "description": "YYYY-MM, current month when empty",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/budgets/{budget_id}": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Budgets"
                ],
                "summary": "Update Budget",
                "parameters": [
                    {
                        "name": "budget_id",
                        "in": "path",
                        "required": true,
                        "description": "Budget ID",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Budget",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            },
            "delete": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Budgets"
                ],
                "summary": "Delete Budget",
                "parameters": [
                    {
                        "name": "budget_id",
                        "in": "path",
                        "required": true,
                        "description": "Budget ID",
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/assistant/parse": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Extracts pending drafts from a free-text description",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Assistant"
                ],
                "summary": "Parse Text",
                "parameters": [
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Text",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "429": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "503": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/assistant/receipt": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Extracts pending drafts from a receipt photo",
                "consumes": [
                    "multipart/form-data"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Assistant"
                ],
                "summary": "Parse Receipt",
                "parameters": [
                    {
                        "name": "receipt",
                        "in": "formData",
                        "required": true,
                        "description": "Receipt image (jpeg, png or gif)",
                        "type": "file"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "413": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/insights": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Short advice generated from balances, debts and budgets. Cached per user.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Assistant"
                ],
                "summary": "Insights",
                "parameters": [
                    {
                        "name": "refresh",
                        "in": "query",
                        "required": false,
                        "description": "Bypass the cache",
                        "type": "boolean"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "503": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/exports/transactions": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Downloads transactions with debt status and balances",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Exports"
                ],
                "summary": "Export Transactions",
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "description": "csv, xlsx or pdf",
                        "type": "string"
                    },
                    {
                        "name": "start_date",
                        "in": "query",
                        "required": false,
                        "description": "YYYY-MM-DD",
                        "type": "string"
                    },
                    {
                        "name": "end_date",
                        "in": "query",
                        "required": false,
                        "description": "YYYY-MM-DD",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/jobs/status": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Worker pool counters plus the reminder interval, lookahead and latest run",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Jobs"
                ],
                "summary": "Background work status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "VanTrack API",
	Description:      "Personal ledger: balances, receivables and payables, drafts and contacts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
